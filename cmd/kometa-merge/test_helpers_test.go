package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/V3L/kometa-yaml-merger/internal/config"
	"github.com/V3L/kometa-yaml-merger/internal/testsupport"
)

const testCore = `libraries:
  Movies - Disney:
    metadata_files:
    collection_files:
  TV Shows:
    metadata_files:
settings:
  cache: true
`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("KOMETA_CONFIG_BASE", "")

	base := []testsupport.ConfigOption{
		testsupport.WithCore(testCore),
		testsupport.WithFragments(map[string]string{
			"libraries/global/metadata/shared.yml":    "metadata:\n  Alien: {}\n",
			"libraries/movies/collections/inline.yml": "collection_files:\n  - pmm: imdb\n",
			"libraries/tv/metadata/shows.yml":         "metadata:\n  Lost: {}\n",
			"settings/cache.yml":                      "settings:\n  cache_expiration: 60\n",
		}),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)

	configPath := filepath.Join(cfg.Paths.ConfigBase, "kometa-merge.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
