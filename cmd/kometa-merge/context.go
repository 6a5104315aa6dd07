package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/config"
	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/mergerun"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel(cfg *config.Config) string {
	if level := flagValue(c.logLevelFlag); level != "" {
		return level
	}
	return cfg.Logging.Level
}

func (c *commandContext) logFormat(cfg *config.Config) string {
	if format := flagValue(c.logFormatFlag); format != "" {
		return format
	}
	return cfg.Logging.Format
}

// terminalLogger logs to the command's stderr only. Commands that perform a
// merge get their own per-run logger from mergerun instead.
func (c *commandContext) terminalLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  c.logLevel(cfg),
		Format: c.logFormat(cfg),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func (c *commandContext) runOptions(cfg *config.Config, logWriter io.Writer, dryRun bool) mergerun.Options {
	return mergerun.Options{
		DryRun:    dryRun,
		LogLevel:  c.logLevel(cfg),
		LogFormat: c.logFormat(cfg),
		LogWriter: logWriter,
	}
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
