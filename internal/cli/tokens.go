// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/model"
)

func newTokensCommand() *cobra.Command {
	var (
		modelID string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "tokens [text...]",
		Short: "Count words and tokens and estimate the cost",
		Long: `Counts the words of the text (arguments or stdin), estimates tokens the
way the input bar does, counts exact cl100k tokens and estimates the prompt
cost for a model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, false)
			if err != nil {
				return err
			}
			m := model.MeasureInput(text, modelID)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Model string `json:"model"`
					model.InputMetrics
				}{modelID, m})
			}
			exact := "unavailable"
			if m.Exact >= 0 {
				exact = humanize.Comma(int64(m.Exact))
			}
			fmt.Fprintln(out, field("Words:", humanize.Comma(int64(m.Words))))
			fmt.Fprintln(out, field("Tokens (est.):", humanize.Comma(int64(m.Tokens))))
			fmt.Fprintln(out, field("Tokens (cl100k):", exact))
			fmt.Fprintln(out, field("Cost ("+modelID+"):", "$"+strconv.FormatFloat(m.Cost, 'f', 4, 64)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelID, "model", "m", model.MetricsModel, "model used for the cost estimate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
