package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/V3L/kometa-yaml-merger/internal/history"
	"github.com/V3L/kometa-yaml-merger/internal/testsupport"
)

func TestStartAndFinishRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	id, err := store.Start(ctx, "run-1", started, false)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected row id to be assigned")
	}

	err = store.Finish(ctx, id, history.Run{
		FinishedAt:   started.Add(1500 * time.Millisecond),
		Status:       history.StatusSucceeded,
		OutputPath:   cfg.Paths.OutputPath,
		BackupPath:   "/backups/config.backup.20240501-080000.yml",
		OutputSHA256: "abc",
		Libraries:    2,
		Categories:   3,
		Links:        7,
		InlineItems:  4,
	})
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.RunID != "run-1" || run.Status != history.StatusSucceeded || run.Links != 7 || run.InlineItems != 4 {
		t.Fatalf("unexpected run: %#v", run)
	}
	if run.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected duration: %s", run.Duration())
	}
}

func TestRecentIsNewestFirstAndLimited(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Start(ctx, "run", time.Now(), false); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
	}
	runs, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Fatalf("expected newest first, got ids %d then %d", runs[0].ID, runs[1].ID)
	}
	if runs[0].Status != history.StatusRunning || !runs[0].FinishedAt.IsZero() {
		t.Fatalf("unfinished run should be running, got %#v", runs[0])
	}
}

func TestLastWrittenSkipsDryRunsAndFailures(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	last, err := store.LastWritten(ctx)
	if err != nil || last != nil {
		t.Fatalf("expected no run on empty ledger, got %v, %v", last, err)
	}

	written, _ := store.Start(ctx, "written", time.Now(), false)
	if err := store.Finish(ctx, written, history.Run{Status: history.StatusSucceeded, OutputSHA256: "one"}); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	dry, _ := store.Start(ctx, "dry", time.Now(), true)
	if err := store.Finish(ctx, dry, history.Run{Status: history.StatusSucceeded, OutputSHA256: "two"}); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	failed, _ := store.Start(ctx, "failed", time.Now(), false)
	if err := store.Finish(ctx, failed, history.Run{Status: history.StatusFailed, Error: "boom"}); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	last, err = store.LastWritten(ctx)
	if err != nil {
		t.Fatalf("LastWritten failed: %v", err)
	}
	if last == nil || last.RunID != "written" || last.OutputSHA256 != "one" {
		t.Fatalf("unexpected last written run: %#v", last)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	_, err = history.Open(path)
	if !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected ledger path in error, got %v", err)
	}
}
