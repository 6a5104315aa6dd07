package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/history"
)

type historyRow struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	DurationMS       int64     `json:"duration_ms"`
	Status           string    `json:"status"`
	DryRun           bool      `json:"dry_run"`
	OutputPath       string    `json:"output_path,omitempty"`
	BackupPath       string    `json:"backup_path,omitempty"`
	OutputSHA256     string    `json:"output_sha256,omitempty"`
	Libraries        int       `json:"libraries"`
	Categories       int       `json:"categories"`
	Links            int       `json:"links"`
	InlineItems      int       `json:"inline_items"`
	InvalidFragments int       `json:"invalid_fragments"`
	Error            string    `json:"error,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent merge runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled (set [history] enabled = true)")
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				rows := make([]historyRow, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, toHistoryRow(run))
				}
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					formatRunDuration(run),
					runStatusLabel(run),
					strconv.Itoa(run.Libraries),
					strconv.Itoa(run.Categories),
					strconv.Itoa(run.Links),
					strconv.Itoa(run.InlineItems),
					strconv.Itoa(run.InvalidFragments),
					runNote(run),
				})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				headers: []string{"Started", "Took", "Status", "Libraries", "Categories", "Links", "Inline", "Invalid", "Note"},
				rows:    rows,
				aligns: []columnAlignment{
					alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft,
				},
			}))
			latest := runs[0]
			fmt.Fprintln(out, renderStatusLine("Last run", runStatusKind(latest.Status),
				runStatusLabel(latest)+" "+latest.RunID, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func toHistoryRow(run history.Run) historyRow {
	return historyRow{
		RunID:            run.RunID,
		StartedAt:        run.StartedAt,
		DurationMS:       run.Duration().Milliseconds(),
		Status:           string(run.Status),
		DryRun:           run.DryRun,
		OutputPath:       run.OutputPath,
		BackupPath:       run.BackupPath,
		OutputSHA256:     run.OutputSHA256,
		Libraries:        run.Libraries,
		Categories:       run.Categories,
		Links:            run.Links,
		InlineItems:      run.InlineItems,
		InvalidFragments: run.InvalidFragments,
		Error:            run.Error,
	}
}

func formatRunDuration(run history.Run) string {
	d := run.Duration()
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func runStatusLabel(run history.Run) string {
	if run.DryRun {
		return string(run.Status) + " (dry run)"
	}
	return string(run.Status)
}

func runNote(run history.Run) string {
	switch {
	case run.Error != "":
		return run.Error
	case run.BackupPath != "":
		return "backup " + run.BackupPath
	default:
		return ""
	}
}
