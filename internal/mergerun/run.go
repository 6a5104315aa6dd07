// Package mergerun executes one complete merge pass: lock, log setup,
// fragment merge, output write, and the run ledger entry.
package mergerun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/V3L/kometa-yaml-merger/internal/config"
	"github.com/V3L/kometa-yaml-merger/internal/fileutil"
	"github.com/V3L/kometa-yaml-merger/internal/history"
	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/merge"
	"github.com/V3L/kometa-yaml-merger/internal/output"
)

// Options configures a single pass.
type Options struct {
	DryRun bool
	// LogLevel overrides cfg.Logging.Level for the terminal.
	LogLevel  string
	LogFormat string
	// LogWriter receives terminal log records; nil means stderr.
	LogWriter io.Writer
}

// Report summarizes a completed pass.
type Report struct {
	RunID    string
	DryRun   bool
	Stats    merge.Stats
	Output   output.Result
	Document []byte
	// WouldChange is set on dry runs when the document differs from the
	// current output file.
	WouldChange bool
	// LastWritten is the newest ledger entry that wrote output, if any.
	LastWritten *history.Run
	Duration    time.Duration
}

// Run performs one pass against cfg.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Report, error) {
	if cfg == nil {
		return Report{}, errors.New("config is required")
	}
	started := time.Now()
	report := Report{RunID: uuid.NewString(), DryRun: opts.DryRun}

	if err := cfg.EnsureDirectories(); err != nil {
		return report, err
	}

	lock, err := output.AcquireLock(cfg.LockPath())
	if err != nil {
		return report, err
	}
	defer lock.Release()

	base, closeLog, err := logging.NewWithClose(logging.Options{
		Level:     firstNonEmpty(opts.LogLevel, cfg.Logging.Level),
		Format:    firstNonEmpty(opts.LogFormat, cfg.Logging.Format),
		Writer:    opts.LogWriter,
		FilePath:  cfg.LogFilePath(),
		FileLevel: "debug",
		Truncate:  true,
		RunID:     report.RunID,
	})
	if err != nil {
		return report, fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()
	logger := logging.NewComponentLogger(base, "run")

	logger.Info("merge run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("merge_dir", cfg.Paths.MergeDir),
		logging.String("output_path", cfg.Paths.OutputPath),
		logging.Bool("dry_run", opts.DryRun),
	)

	ledger, ledgerID := openLedger(ctx, cfg, logger, report.RunID, started, opts.DryRun)
	if ledger != nil {
		defer ledger.Close()
		if last, err := ledger.LastWritten(ctx); err == nil {
			report.LastWritten = last
		}
	}

	runErr := execute(ctx, cfg, base, logger, opts, &report)
	report.Duration = time.Since(started)

	if ledger != nil {
		finishLedger(ctx, ledger, ledgerID, logger, cfg, report, runErr)
	}

	if runErr != nil {
		logging.ErrorWithContext(logger, "merge run failed", "run_failed",
			logging.Error(runErr),
			logging.Duration("duration", report.Duration),
		)
		return report, runErr
	}

	logger.Info("merge run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("libraries", report.Stats.Libraries),
		logging.Int("categories", report.Stats.Categories),
		logging.Int("fragments", report.Stats.Fragments),
		logging.Int("invalid_fragments", report.Stats.InvalidFragments),
		logging.Int("links", report.Stats.Links),
		logging.Int("inline_items", report.Stats.InlineItems),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

// execute hands base to the merge and output components so each tags its
// own records.
func execute(ctx context.Context, cfg *config.Config, base, logger *slog.Logger, opts Options, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	merger := merge.New(os.DirFS(cfg.Paths.MergeDir), merge.Options{
		MergeDir:    cfg.Paths.MergeDir,
		ConfigBase:  cfg.Paths.ConfigBase,
		MountPrefix: cfg.Paths.MountPrefix,
		Logger:      base,
	})
	doc, stats, err := merger.Build(cfg.Paths.CoreFile)
	report.Stats = stats
	if err != nil {
		return err
	}

	data, err := output.Render(doc)
	if err != nil {
		return err
	}
	report.Document = data

	if opts.DryRun {
		current, err := fileutil.HashFile(cfg.Paths.OutputPath)
		if err != nil {
			return fmt.Errorf("hash current output: %w", err)
		}
		report.Output = output.Result{OutputPath: cfg.Paths.OutputPath, SHA256: fileutil.HashBytes(data)}
		report.WouldChange = current != report.Output.SHA256
		report.Output.Unchanged = !report.WouldChange
		logger.Info("dry run, output not written",
			logging.String(logging.FieldEventType, "dry_run"),
			logging.String(logging.FieldPath, cfg.Paths.OutputPath),
			logging.Bool("would_change", report.WouldChange),
		)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	writer := output.NewWriter(cfg.Paths.OutputPath, cfg.Paths.BackupDir, cfg.Backup.Enabled, cfg.BackupRetention(), base)
	result, err := writer.Write(data)
	report.Output = result
	return err
}

func openLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger, runID string, started time.Time, dryRun bool) (*history.Store, int64) {
	if !cfg.History.Enabled {
		return nil, 0
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
			logging.String(logging.FieldPath, cfg.HistoryPath()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded"),
		)
		return nil, 0
	}
	id, err := store.Start(ctx, runID, started, dryRun)
	if err != nil {
		logging.WarnWithContext(logger, "record run start failed", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is not recorded"),
		)
		_ = store.Close()
		return nil, 0
	}
	return store, id
}

func finishLedger(ctx context.Context, store *history.Store, id int64, logger *slog.Logger, cfg *config.Config, report Report, runErr error) {
	run := history.Run{
		FinishedAt:       time.Now(),
		Status:           history.StatusSucceeded,
		OutputPath:       cfg.Paths.OutputPath,
		BackupPath:       report.Output.BackupPath,
		OutputSHA256:     report.Output.SHA256,
		Libraries:        report.Stats.Libraries,
		Categories:       report.Stats.Categories,
		Links:            report.Stats.Links,
		InlineItems:      report.Stats.InlineItems,
		InvalidFragments: report.Stats.InvalidFragments,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}
	// A cancelled run still gets its row closed out.
	if err := store.Finish(context.WithoutCancel(ctx), id, run); err != nil {
		logging.WarnWithContext(logger, "record run outcome failed", "history_unavailable", logging.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
