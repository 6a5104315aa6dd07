package config

const (
	defaultConfigBase         = "~/docker/kometa"
	defaultMergeDirName       = "config_merge"
	defaultCoreFile           = "config_core.yml"
	defaultOutputName         = "config.yml"
	defaultBackupDirName      = "_config_backups"
	defaultLogDirName         = "_script_logs"
	defaultMountPrefix        = "/config"
	defaultBackupEnabled      = true
	defaultBackupRetention    = 0
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultWatchDebounceMS    = 500
	defaultHistoryEnabled     = true
	defaultLogFileName        = "config_merge.log"
	defaultHistoryFileName    = "history.db"
	defaultLockFileName       = "config_merge.lock"
	configBaseEnv             = "KOMETA_CONFIG_BASE"
	defaultConfigPathTemplate = "~/.config/kometa-merge/config.toml"
	projectConfigName         = "kometa-merge.toml"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CoreFile:    defaultCoreFile,
			MountPrefix: defaultMountPrefix,
		},
		Backup: Backup{
			Enabled:       defaultBackupEnabled,
			RetentionDays: defaultBackupRetention,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Watch: Watch{
			DebounceMS: defaultWatchDebounceMS,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
	}
}
