// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
	"github.com/jeranaias/zen-tui/internal/util"
)

// maxChipWidth bounds a single chip label.
const maxChipWidth = 40

// RenderChips lays out the suggestion chips in rows that fit width. selected
// indexes bundle.All(); -1 highlights nothing.
func RenderChips(theme *styles.Theme, bundle intent.Bundle, selected, width int) string {
	all := bundle.All()
	if len(all) == 0 {
		return ""
	}
	if width < maxChipWidth {
		width = maxChipWidth
	}

	var rows []string
	var row []string
	rowWidth := 0
	for i, label := range all {
		style := theme.Chip
		if i == selected {
			style = theme.ChipSelected
		}
		chip := style.Render(util.TruncateWidth(label, maxChipWidth))
		w := lipgloss.Width(chip)
		if rowWidth > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, chip)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	heading := theme.ChipHeading.Render("Suggestions  (tab to cycle, enter to insert)")
	return heading + "\n" + strings.Join(rows, "\n")
}
