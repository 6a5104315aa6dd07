package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var level string
	var eventType string
	var library string
	var follow bool
	var raw bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the diagnostics log of the last merge run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			filter := logs.Filter{
				MinLevel:  logs.ParseLevel(level),
				EventType: eventType,
				Library:   library,
			}

			out := cmd.OutOrStdout()
			emit := func(rec logs.Record) {
				if raw {
					_ = writeJSONLine(out, recordJSON(rec))
					return
				}
				fmt.Fprintln(out, logs.Format(rec))
			}

			path := cfg.LogFilePath()
			records, offset, err := logs.Read(path, logs.ReadOptions{Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			for _, rec := range records {
				emit(rec)
			}
			if !follow {
				if len(records) == 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "No matching records in %s\n", path)
				}
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return logs.Follow(signalCtx, path, offset, 0, filter, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "info", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&eventType, "event", "", "Only records with this event_type")
	cmd.Flags().StringVar(&library, "library", "", "Only records for this library")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing records as they are written")
	cmd.Flags().BoolVar(&raw, "json", false, "Emit records as JSON")
	return cmd
}

func recordJSON(rec logs.Record) map[string]any {
	out := make(map[string]any, len(rec.Fields)+8)
	for k, v := range rec.Fields {
		out[k] = v
	}
	out["ts"] = rec.Time
	out["level"] = rec.Level.String()
	out["msg"] = rec.Message
	for key, value := range map[string]string{
		"run_id":     rec.RunID,
		"component":  rec.Component,
		"event_type": rec.EventType,
		"library":    rec.Library,
		"category":   rec.Category,
		"path":       rec.Path,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return out
}
