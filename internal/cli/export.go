// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/export"
)

func newExportCommand(gf *globalFlags) *cobra.Command {
	var (
		format     string
		outDir     string
		theme      string
		timestamps bool
		noMeta     bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved chat as markdown, HTML or JSON",
		Example: `  zen export 3f2a -f html -o ~/Documents
  zen export 3f2a --format md --timestamps`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, gf)
			if err != nil {
				return err
			}
			conv, err := store.Resolve(args[0])
			if err != nil {
				return err
			}

			opts := export.DefaultOptions()
			opts.OutputDir = outDir
			opts.Theme = theme
			opts.IncludeTimestamps = timestamps
			opts.IncludeMetadata = !noMeta
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return err
			}
			path, err := export.ExportToFile(conv, exporter, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]"), "Exported", path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "md", "md, html or json")
	f.StringVarP(&outDir, "output", "o", ".", "output directory")
	f.StringVar(&theme, "theme", "dark", "HTML theme: dark or light")
	f.BoolVar(&timestamps, "timestamps", false, "include message times")
	f.BoolVar(&noMeta, "no-metadata", false, "omit front matter and header")
	return cmd
}
