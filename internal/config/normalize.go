package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.ConfigBase) == "" {
		if value, ok := os.LookupEnv(configBaseEnv); ok && strings.TrimSpace(value) != "" {
			c.Paths.ConfigBase = strings.TrimSpace(value)
		} else {
			c.Paths.ConfigBase = defaultConfigBase
		}
	}

	var err error
	if c.Paths.ConfigBase, err = expandPath(strings.TrimSpace(c.Paths.ConfigBase)); err != nil {
		return fmt.Errorf("paths.config_base: %w", err)
	}

	if strings.TrimSpace(c.Paths.MergeDir) == "" {
		c.Paths.MergeDir = filepath.Join(c.Paths.ConfigBase, defaultMergeDirName)
	}
	if c.Paths.MergeDir, err = expandPath(c.Paths.MergeDir); err != nil {
		return fmt.Errorf("paths.merge_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.OutputPath) == "" {
		c.Paths.OutputPath = filepath.Join(c.Paths.ConfigBase, defaultOutputName)
	}
	if c.Paths.OutputPath, err = expandPath(c.Paths.OutputPath); err != nil {
		return fmt.Errorf("paths.output_path: %w", err)
	}

	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		c.Paths.BackupDir = filepath.Join(c.Paths.MergeDir, defaultBackupDirName)
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.MergeDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	c.Paths.CoreFile = strings.TrimSpace(c.Paths.CoreFile)
	if c.Paths.CoreFile == "" {
		c.Paths.CoreFile = defaultCoreFile
	}
	// The merger opens the core through an fs.FS, which only accepts clean
	// slash-separated names.
	c.Paths.CoreFile = path.Clean(filepath.ToSlash(c.Paths.CoreFile))

	c.Paths.MountPrefix = strings.TrimSpace(c.Paths.MountPrefix)
	if c.Paths.MountPrefix == "" {
		c.Paths.MountPrefix = defaultMountPrefix
	}
	c.Paths.MountPrefix = path.Clean(filepath.ToSlash(c.Paths.MountPrefix))
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
