package main

import (
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/config"
	"github.com/V3L/kometa-yaml-merger/internal/mergerun"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var outputPath string
	var exitZero bool

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the fragment tree into the output configuration",
		Long: `Merge reads the core configuration, folds every fragment below the merge
directory into it, backs up the previous output, and writes the result.

With --dry-run the merged document is printed to stdout and nothing on
disk changes apart from the diagnostics log.

A failed run exits 2 when the core configuration is missing or empty, 3 when
another run holds the lock, and 1 otherwise. --exit-zero reports the failure
and exits 0 instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyOutputOverride(cfg, outputPath); err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			report, err := mergerun.Run(signalCtx, cfg, ctx.runOptions(cfg, cmd.ErrOrStderr(), dryRun))
			if err != nil {
				if exitZero {
					fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine("Merge", statusError, err.Error(), shouldColorize(cmd.ErrOrStderr())))
					return nil
				}
				return err
			}

			if dryRun {
				if _, err := cmd.OutOrStdout().Write(report.Document); err != nil {
					return err
				}
				printReport(cmd.ErrOrStderr(), report)
				return nil
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the merged configuration instead of writing it")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this path instead of the configured output_path")
	cmd.Flags().BoolVar(&exitZero, "exit-zero", false, "Report a failed run but exit successfully")
	return cmd
}

func applyOutputOverride(cfg *config.Config, outputPath string) error {
	outputPath = strings.TrimSpace(outputPath)
	if outputPath == "" {
		return nil
	}
	expanded, err := config.ExpandPath(outputPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	cfg.Paths.OutputPath = abs
	return cfg.Validate()
}

func printReport(out io.Writer, report mergerun.Report) {
	colorize := shouldColorize(out)
	stats := report.Stats

	fmt.Fprintf(out, "Merged %d libraries and %d categories (%d links, %d inline items, %d fragments)\n",
		stats.Libraries, stats.Categories, stats.Links, stats.InlineItems, stats.Fragments)

	kind, message := outputStatus(report)
	fmt.Fprintln(out, renderStatusLine("Output", kind, message, colorize))

	if report.Output.BackupPath != "" {
		fmt.Fprintln(out, renderStatusLine("Backup", statusInfo, report.Output.BackupPath, colorize))
	}
	if n := len(report.Output.Pruned); n > 0 {
		fmt.Fprintln(out, renderStatusLine("Pruned", statusInfo, fmt.Sprintf("%d old backups", n), colorize))
	}
	if stats.InvalidFragments > 0 {
		fmt.Fprintln(out, renderStatusLine("Fragments", statusWarn,
			fmt.Sprintf("%d invalid or empty (see diagnostics log)", stats.InvalidFragments), colorize))
	}
	if report.DryRun && report.LastWritten != nil {
		fmt.Fprintln(out, renderStatusLine("Last written", statusInfo,
			report.LastWritten.StartedAt.Local().Format("2006-01-02 15:04:05"), colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo, report.RunID, colorize))
}
