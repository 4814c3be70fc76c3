// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/session"
)

// ClassifyOutput is the JSON written by `zen classify`.
type ClassifyOutput struct {
	Intent      string          `json:"intent"`
	Build       bool            `json:"build"`
	Suggestions intent.Bundle   `json:"suggestions"`
	Artifact    ArtifactSummary `json:"artifact"`
}

// ArtifactSummary describes the artifact found in the text.
type ArtifactSummary struct {
	Kind       string `json:"kind"`
	Language   string `json:"language,omitempty"`
	Renderable bool   `json:"renderable"`
	Hash       string `json:"hash"`
	CodeLength int    `json:"code_length,omitempty"`
}

// Classify runs the intent and artifact classifiers over text.
func Classify(text string) ClassifyOutput {
	cleaned := session.CleanupForArtifact(text)
	res := artifact.Classify(cleaned)
	return ClassifyOutput{
		Intent:      intent.Classify(text).String(),
		Build:       intent.IsBuildIntent(text),
		Suggestions: intent.SuggestFor(text),
		Artifact: ArtifactSummary{
			Kind:       string(res.Kind),
			Language:   res.Language,
			Renderable: res.Renderable(),
			Hash:       artifact.ContentHash(cleaned),
			CodeLength: len([]rune(res.Code)),
		},
	}
}

func newClassifyCommand() *cobra.Command {
	var contentJSON bool
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text as a prompt and as a reply",
		Long: `Reads text from the arguments or stdin and prints, as JSON, the prompt
intent with its follow-up suggestions and the artifact the text would open
in the dock.`,
		Example: `  zen classify "build a pricing page"
  cat answer.md | zen classify
  echo '[{"type":"text","text":"hi"}]' | zen classify --content-json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args, contentJSON)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(Classify(text), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&contentJSON, "content-json", false, "input is a JSON message content value")
	return cmd
}
