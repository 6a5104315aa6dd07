package mergerun_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/V3L/kometa-yaml-merger/internal/config"
	"github.com/V3L/kometa-yaml-merger/internal/history"
	"github.com/V3L/kometa-yaml-merger/internal/merge"
	"github.com/V3L/kometa-yaml-merger/internal/mergerun"
	"github.com/V3L/kometa-yaml-merger/internal/output"
	"github.com/V3L/kometa-yaml-merger/internal/testsupport"
)

const core = `libraries:
  Movies:
    metadata_files:
settings:
  cache: true
`

func newConfig(t *testing.T, opts ...testsupport.ConfigOption) *config.Config {
	t.Helper()
	base := []testsupport.ConfigOption{
		testsupport.WithCore(core),
		testsupport.WithFragments(map[string]string{
			"libraries/global/metadata/shared.yml": "metadata:\n  Alien: {}\n",
			"libraries/movies/metadata/inline.yml": "metadata_files:\n  - pmm: imdb\n",
			"settings/cache.yml":                   "settings:\n  cache_expiration: 60\n",
		}),
	}
	return testsupport.NewConfig(t, append(base, opts...)...)
}

func quiet() mergerun.Options {
	return mergerun.Options{LogWriter: io.Discard}
}

func TestRunWritesOutputAndRecordsHistory(t *testing.T) {
	cfg := newConfig(t)
	ctx := context.Background()

	report, err := mergerun.Run(ctx, cfg, quiet())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
	if report.Stats.Libraries != 1 || report.Stats.Links != 1 || report.Stats.InlineItems != 1 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}

	written := testsupport.ReadFile(t, cfg.Paths.OutputPath)
	for _, want := range []string{
		"file: /config/config_merge/libraries/global/metadata/shared.yml",
		"pmm: imdb",
		"cache_expiration: 60",
	} {
		if !strings.Contains(written, want) {
			t.Fatalf("output missing %q:\n%s", want, written)
		}
	}

	log := testsupport.ReadFile(t, cfg.LogFilePath())
	if !strings.Contains(log, report.RunID) || !strings.Contains(log, "run_complete") {
		t.Fatalf("diagnostics log missing run details:\n%s", log)
	}

	store := testsupport.MustOpenHistory(t, cfg)
	runs, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusSucceeded || runs[0].RunID != report.RunID {
		t.Fatalf("unexpected ledger: %+v", runs)
	}
	if runs[0].OutputSHA256 != report.Output.SHA256 {
		t.Fatalf("ledger sha %q != report sha %q", runs[0].OutputSHA256, report.Output.SHA256)
	}
}

func TestRunSecondPassBacksUpAndReportsUnchanged(t *testing.T) {
	cfg := newConfig(t)
	ctx := context.Background()

	if _, err := mergerun.Run(ctx, cfg, quiet()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	report, err := mergerun.Run(ctx, cfg, quiet())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !report.Output.Unchanged {
		t.Fatal("expected second pass to be unchanged")
	}
	if report.Output.BackupPath == "" {
		t.Fatal("expected previous output to be backed up")
	}
	if _, err := os.Stat(report.Output.BackupPath); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if report.LastWritten == nil {
		t.Fatal("expected last written run from ledger")
	}
}

func TestRunDryRunLeavesOutputAlone(t *testing.T) {
	cfg := newConfig(t)
	opts := quiet()
	opts.DryRun = true

	report, err := mergerun.Run(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.OutputPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run wrote output: %v", err)
	}
	if !report.WouldChange {
		t.Fatal("expected dry run against missing output to report a change")
	}
	if !strings.Contains(string(report.Document), "settings:") {
		t.Fatalf("expected rendered document, got %q", report.Document)
	}
}

func TestRunEmptyCoreFailsAndIsRecorded(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCore(""))
	ctx := context.Background()

	_, err := mergerun.Run(ctx, cfg, quiet())
	if !errors.Is(err, merge.ErrEmptyCore) {
		t.Fatalf("expected ErrEmptyCore, got %v", err)
	}
	if _, statErr := os.Stat(cfg.Paths.OutputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("expected no output for empty core")
	}

	runs, err := testsupport.MustOpenHistory(t, cfg).Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != history.StatusFailed || runs[0].Error == "" {
		t.Fatalf("expected failed ledger row, got %+v", runs)
	}
}

func TestRunRefusesWhileLocked(t *testing.T) {
	cfg := newConfig(t, testsupport.WithoutHistory())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	held, err := output.AcquireLock(cfg.LockPath())
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer held.Release()

	if _, err := mergerun.Run(context.Background(), cfg, quiet()); !errors.Is(err, output.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := mergerun.Run(context.Background(), nil, quiet()); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunResolvesDotPrefixedCoreFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(base, "config_merge", "config_core.yml"), core)
	configPath := filepath.Join(t.TempDir(), "kometa-merge.toml")
	testsupport.WriteFile(t, configPath,
		fmt.Sprintf("[paths]\nconfig_base = %q\ncore_file = \"./config_core.yml\"\n", base))

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	report, err := mergerun.Run(context.Background(), cfg, quiet())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Stats.Libraries != 1 {
		t.Fatalf("expected the core library to be merged, got %+v", report.Stats)
	}
	if written := testsupport.ReadFile(t, cfg.Paths.OutputPath); !strings.Contains(written, "Movies:") {
		t.Fatalf("expected library in output, got:\n%s", written)
	}
}
