// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// RenderMetrics draws the live input metrics line.
func RenderMetrics(theme *styles.Theme, m model.InputMetrics) string {
	parts := []string{
		fmt.Sprintf("%d words", m.Words),
		fmt.Sprintf("~%d tokens", m.Tokens),
	}
	if m.Exact >= 0 {
		parts = append(parts, fmt.Sprintf("%d exact", m.Exact))
	}
	line := theme.Metrics.Render(strings.Join(parts, " · "))
	return line + theme.Metrics.Render(" · ") + theme.MetricsCost.Render(fmt.Sprintf("~$%.4f", m.Cost))
}

// RenderStatusBar draws a full-width bar with left and right segments.
func RenderStatusBar(theme *styles.Theme, width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// KeyHint formats "key action" pairs for the status bar.
func KeyHint(theme *styles.Theme, pairs ...string) string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, theme.StatusKey.Render(pairs[i])+" "+pairs[i+1])
	}
	return strings.Join(out, "  ")
}
