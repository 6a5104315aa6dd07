package preflight

import (
	"context"

	"github.com/V3L/kometa-yaml-merger/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Merge directory", cfg.Paths.MergeDir),
		CheckCore(cfg.CorePath()),
		CheckOutputTarget(cfg.Paths.OutputPath),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if cfg.Backup.Enabled {
		results = append(results, CheckDirectoryAccess("Backup directory", cfg.Paths.BackupDir))
	}

	results = append(results, CheckLock(cfg.LockPath()))

	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.HistoryPath()))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
