package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/V3L/kometa-yaml-merger/internal/history"
	"github.com/V3L/kometa-yaml-merger/internal/output"
	"github.com/V3L/kometa-yaml-merger/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectory(t *testing.T) {
	result := CheckReadableDirectory("merge", t.TempDir())
	if !result.Passed || !strings.Contains(result.Detail, "read ok") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCheckOutputTarget(t *testing.T) {
	dir := t.TempDir()
	if result := CheckOutputTarget(filepath.Join(dir, "config.yml")); !result.Passed {
		t.Fatalf("expected absent output in writable dir to pass, got %s", result.Detail)
	}
	if result := CheckOutputTarget(dir); result.Passed {
		t.Fatal("expected directory output path to fail")
	}
	if result := CheckOutputTarget(filepath.Join(dir, "missing", "config.yml")); result.Passed {
		t.Fatal("expected missing parent directory to fail")
	}
}

func TestCheckCore(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yml")
	testsupport.WriteFile(t, good, "libraries:\n  Movies:\n  TV Shows:\nsettings:\n  cache: true\n")
	result := CheckCore(good)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "2 keys, 2 libraries") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}

	empty := filepath.Join(dir, "empty.yml")
	testsupport.WriteFile(t, empty, "")
	if CheckCore(empty).Passed {
		t.Fatal("expected empty core to fail")
	}

	invalid := filepath.Join(dir, "invalid.yml")
	testsupport.WriteFile(t, invalid, "libraries: [unclosed\n")
	if result := CheckCore(invalid); result.Passed || !strings.Contains(result.Detail, "invalid YAML") {
		t.Fatalf("expected invalid YAML failure, got %+v", result)
	}

	if CheckCore(filepath.Join(dir, "absent.yml")).Passed {
		t.Fatal("expected missing core to fail")
	}
}

func TestCheckLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config_merge.lock")
	if result := CheckLock(path); !result.Passed {
		t.Fatalf("expected free lock, got %s", result.Detail)
	}

	held, err := output.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer held.Release()

	if result := CheckLock(path); result.Passed || !strings.Contains(result.Detail, "held by another run") {
		t.Fatalf("expected held lock failure, got %+v", result)
	}
}

func TestCheckHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	result := CheckHistory(context.Background(), path)
	if !result.Passed || !strings.Contains(result.Detail, "no runs yet") {
		t.Fatalf("unexpected result: %+v", result)
	}

	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	id, err := store.Start(ctx, "run-1", time.Now(), false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := store.Finish(ctx, id, history.Run{Status: history.StatusSucceeded, FinishedAt: time.Now()}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	store.Close()

	result = CheckHistory(ctx, path)
	if !result.Passed || !strings.Contains(result.Detail, "succeeded") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCore("libraries:\n  Movies:\n"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, failed: %+v", failed)
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	want := []string{"Merge directory", "Core configuration", "Output file", "Log directory", "Backup directory", "Run lock", "Run history"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected checks: %v", names)
	}
}

func TestRunAllSkipsDisabledFeatures(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCore("settings:\n  cache: true\n"), testsupport.WithoutHistory())
	cfg.Backup.Enabled = false
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	for _, r := range RunAll(context.Background(), cfg) {
		if r.Name == "Run history" || r.Name == "Backup directory" {
			t.Fatalf("unexpected check %q for disabled feature", r.Name)
		}
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
