package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/V3L/kometa-yaml-merger/internal/config"
	"github.com/V3L/kometa-yaml-merger/internal/query"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var pathFlag string
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration or one subtree of it",
		Long: `Show prints the last written output file, or the node at --path.

Path segments are separated by colons so library names may contain dots
and spaces, and numeric segments index lists:

  kometa-merge show --path "libraries:Movies - Disney:metadata_files:0"

A path beginning with "$" is passed through as a YAMLPath expression.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(fileFlag)
			if target == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				target = cfg.Paths.OutputPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve file path: %w", err)
				}
				target = expanded
			}

			data, err := os.ReadFile(target)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("%s does not exist; run `kometa-merge merge` first", target)
				}
				return fmt.Errorf("read %s: %w", target, err)
			}

			selected, err := query.Select(data, pathFlag)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(selected)
			return err
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Colon-separated path of the node to print")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read this file instead of the configured output_path")
	return cmd
}
