package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/scaffold"
)

func newScaffoldCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Create the fragment folder structure from the core configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.terminalLogger(cmd, cfg)
			if err != nil {
				return err
			}

			summary, err := scaffold.Create(scaffold.Options{
				MergeDir:  cfg.Paths.MergeDir,
				CorePath:  cfg.CorePath(),
				LogDir:    cfg.Paths.LogDir,
				BackupDir: cfg.Paths.BackupDir,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !quiet {
				rows := make([][]string, 0, len(summary.Folders))
				for _, folder := range summary.Folders {
					status := "exists"
					if folder.Created {
						status = "created"
					}
					rows = append(rows, []string{folder.Group, relativeTo(summary.MergeDir, folder.Path), status})
				}
				fmt.Fprintln(out, renderTable(tableSpec{
					headers: []string{"Group", "Folder", "Status"},
					rows:    rows,
					aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft},
				}))
			}
			fmt.Fprintf(out, "Created %d of %d folders for %d libraries and %d categories in %s\n",
				summary.Created(), len(summary.Folders), len(summary.Libraries), len(summary.Categories), summary.MergeDir)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the summary line")
	return cmd
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return path
	}
	if len(rel) >= 2 && rel[:2] == ".." {
		return path
	}
	return rel
}
