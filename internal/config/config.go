package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the fragment tree and everything the merger writes.
type Paths struct {
	ConfigBase  string `toml:"config_base"`
	MergeDir    string `toml:"merge_dir"`
	CoreFile    string `toml:"core_file"`
	OutputPath  string `toml:"output_path"`
	BackupDir   string `toml:"backup_dir"`
	LogDir      string `toml:"log_dir"`
	MountPrefix string `toml:"mount_prefix"`
}

// Backup controls what happens to the previous output file.
type Backup struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Logging contains configuration for terminal log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Watch contains configuration for the watch command.
type Watch struct {
	DebounceMS int `toml:"debounce_ms"`
}

// History toggles the run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for kometa-merge.
//
// Configuration sections:
//   - Paths: fragment tree, core file, output, backup, and log locations
//   - Backup: backup of the previous output and retention
//   - Logging: terminal log format and level
//   - Watch: debounce for re-merging on fragment changes
//   - History: SQLite run ledger
type Config struct {
	Paths   Paths   `toml:"paths"`
	Backup  Backup  `toml:"backup"`
	Logging Logging `toml:"logging"`
	Watch   Watch   `toml:"watch"`
	History History `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPathTemplate)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and derived.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// CorePath returns the absolute path of the core configuration file.
func (c *Config) CorePath() string {
	return filepath.Join(c.Paths.MergeDir, c.Paths.CoreFile)
}

// LogFilePath returns the diagnostics log that is truncated at the start of every run.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, defaultLogFileName)
}

// HistoryPath returns the SQLite run ledger location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.LogDir, defaultHistoryFileName)
}

// LockPath returns the lock file that serializes merge runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, defaultLockFileName)
}

// WatchDebounce returns the watch debounce window.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// BackupRetention returns how long backups are kept; zero keeps them forever.
func (c *Config) BackupRetention() time.Duration {
	return time.Duration(c.Backup.RetentionDays) * 24 * time.Hour
}

// EnsureDirectories creates the directories a merge run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, filepath.Dir(c.Paths.OutputPath)}
	if c.Backup.Enabled {
		dirs = append(dirs, c.Paths.BackupDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
