package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/logging"
	"github.com/V3L/kometa-yaml-merger/internal/mergerun"
	"github.com/V3L/kometa-yaml-merger/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipInitial bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Merge whenever fragment files change",
		Long: `Watch merges once, then re-merges after each burst of changes below the
merge directory. Folders starting with an underscore (logs and backups) are
ignored. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.terminalLogger(cmd, cfg)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			run := func(runCtx context.Context) error {
				report, err := mergerun.Run(runCtx, cfg, ctx.runOptions(cfg, cmd.ErrOrStderr(), false))
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			}

			if !skipInitial {
				if err := run(signalCtx); err != nil {
					logging.ErrorWithContext(logger, "initial merge failed", "watch_run_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "watching continues; the next change triggers a retry"),
					)
				}
			}

			watcher, err := watch.New(watch.Options{
				Root:     cfg.Paths.MergeDir,
				Debounce: cfg.WatchDebounce(),
				Logger:   logger,
				Run:      run,
				Ignore:   []string{cfg.Paths.OutputPath},
			})
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			return watcher.Watch(signalCtx)
		},
	}

	cmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "Do not merge before the first change")
	return cmd
}
