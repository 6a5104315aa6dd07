package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Watch.DebounceMS <= 0 {
		return errors.New("watch.debounce_ms must be positive")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ConfigBase) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPathTemplate
		}
		return fmt.Errorf("paths.config_base is required. Set %s or edit %s (create with 'kometa-merge config init')", configBaseEnv, defaultPath)
	}
	if filepath.IsAbs(c.Paths.CoreFile) {
		return errors.New("paths.core_file must be relative to paths.merge_dir")
	}
	if !fs.ValidPath(c.Paths.CoreFile) || c.Paths.CoreFile == "." {
		return fmt.Errorf("paths.core_file must name a file inside paths.merge_dir, got %q", c.Paths.CoreFile)
	}
	if !path.IsAbs(c.Paths.MountPrefix) {
		return fmt.Errorf("paths.mount_prefix must be absolute, got %q", c.Paths.MountPrefix)
	}
	if c.Paths.OutputPath == c.Paths.MergeDir {
		return errors.New("paths.output_path must not be the merge directory")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if c.Backup.RetentionDays < 0 {
		return errors.New("backup.retention_days must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
