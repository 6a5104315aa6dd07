package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/V3L/kometa-yaml-merger/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted at a unique temp directory per test.
// Every derived path is filled in the way Load would derive it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ConfigBase = base
	cfgVal.Paths.MergeDir = filepath.Join(base, "config_merge")
	cfgVal.Paths.OutputPath = filepath.Join(base, "config.yml")
	cfgVal.Paths.BackupDir = filepath.Join(cfgVal.Paths.MergeDir, "_config_backups")
	cfgVal.Paths.LogDir = filepath.Join(cfgVal.Paths.MergeDir, "_script_logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCore writes the core configuration into the merge directory.
func WithCore(content string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.CorePath(), content)
	}
}

// WithFragments writes fragment files relative to the merge directory.
func WithFragments(files map[string]string) ConfigOption {
	return func(b *configBuilder) {
		WriteTree(b.t, b.cfg.Paths.MergeDir, files)
	}
}

// WithoutHistory disables the run ledger.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithMountPrefix overrides the container mount prefix.
func WithMountPrefix(prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MountPrefix = prefix
	}
}
