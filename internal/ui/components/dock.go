// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// DockView is what the dock panel needs to draw itself.
type DockView struct {
	Title      string
	Tab        artifact.Tab
	Result     artifact.Result
	CodeView   string
	PreviewURL string
	Revision   int

	Width  int
	Height int
	Offset int
}

// NewDockView snapshots an open dock.
func NewDockView(d *artifact.Dock, previewURL string) DockView {
	return DockView{
		Title:      d.Title(),
		Tab:        d.Tab(),
		Result:     d.Result(),
		CodeView:   d.CodeView(),
		PreviewURL: previewURL,
		Revision:   d.Revision(),
	}
}

// RenderDock draws the tab bar and the active tab.
func RenderDock(theme *styles.Theme, v DockView) string {
	innerWidth := v.Width - 4
	if innerWidth < 20 {
		innerWidth = 20
	}
	bodyHeight := v.Height - 4
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	tabs := make([]string, 0, 2)
	for _, tab := range []artifact.Tab{artifact.TabPreview, artifact.TabCode} {
		if tab == v.Tab {
			tabs = append(tabs, theme.TabActive.Render(tab.String()))
		} else {
			tabs = append(tabs, theme.TabInactive.Render(tab.String()))
		}
	}
	title := theme.DockTitle.Render("Artifact: " + v.Title)
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", lipgloss.JoinHorizontal(lipgloss.Top, tabs...))

	var body string
	if v.Tab == artifact.TabCode {
		body = CodeBlock{
			Language: codeLanguage(v),
			Code:     v.CodeView,
			Width:    innerWidth,
			Offset:   v.Offset,
			Height:   bodyHeight,
		}.Render()
	} else {
		body = renderPreviewSummary(theme, v, innerWidth)
	}

	hint := theme.Muted.Render("[ctrl+t] tab  [ctrl+o] open  [esc] close")
	content := lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", hint)
	return theme.Dock.Width(innerWidth + 2).Render(content)
}

func codeLanguage(v DockView) string {
	if v.Result.Kind == artifact.KindChart {
		return "json"
	}
	return v.Result.Language
}

// renderPreviewSummary describes the artifact; the rendered page itself is
// served to the browser.
func renderPreviewSummary(theme *styles.Theme, v DockView, width int) string {
	var lines []string
	switch v.Result.Kind {
	case artifact.KindChart:
		chartType := v.Result.Chart.Type()
		if chartType == "" {
			chartType = "unknown"
		}
		lines = append(lines, fmt.Sprintf("Chart.js %s chart", chartType))
		if labels := datasetLabels(v.Result.Chart); len(labels) > 0 {
			lines = append(lines, "Datasets: "+strings.Join(labels, ", "))
		}
	default:
		lang := v.Result.Language
		if lang == "" {
			lang = "plain"
		}
		lines = append(lines, fmt.Sprintf("%s document, %d lines", lang, strings.Count(v.Result.Code, "\n")+1))
	}

	if v.PreviewURL != "" {
		lines = append(lines, "", "Live preview: "+styles.RenderInfo(v.PreviewURL))
	} else {
		lines = append(lines, "", theme.Muted.Render("Live preview is off; ctrl+o writes the page and opens it."))
	}
	lines = append(lines, theme.Muted.Render(fmt.Sprintf("revision %d", v.Revision)))
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func datasetLabels(spec artifact.ChartSpec) []string {
	data, _ := spec["data"].(map[string]any)
	sets, _ := data["datasets"].([]any)
	var labels []string
	for _, s := range sets {
		ds, _ := s.(map[string]any)
		if label, ok := ds["label"].(string); ok && label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}
