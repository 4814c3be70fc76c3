// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/ui/components"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	body := m.renderBody()

	parts := []string{m.renderHeader(), body}
	if chips := m.renderChips(); chips != "" {
		parts = append(parts, chips)
	}
	parts = append(parts, m.renderInput())
	if m.opts.ShowMetrics {
		parts = append(parts, components.RenderMetrics(m.theme, session.Metrics(m.input.Value())))
	}
	parts = append(parts, m.renderStatusBar())
	screen := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.palette.IsVisible() {
		box := m.palette.View()
		row := (m.height - lipgloss.Height(box)) / 3
		col := (m.width - lipgloss.Width(box)) / 2
		return overlay(screen, box, row, col, m.width)
	}
	if toasts := components.RenderToasts(m.theme, m.toasts.Toasts(), m.width); toasts != "" {
		row := m.height - lipgloss.Height(toasts) - 2
		col := m.width - lipgloss.Width(toasts) - 1
		return overlay(screen, toasts, row, col, m.width)
	}
	return screen
}

// overlay draws box over base with its top-left corner at (row, col). Base
// text right of the box on covered rows is dropped.
func overlay(base, box string, row, col, width int) string {
	if row < 0 {
		row = 0
	}
	if col < 0 {
		col = 0
	}
	lines := strings.Split(base, "\n")
	for i, boxLine := range strings.Split(box, "\n") {
		r := row + i
		if r >= len(lines) {
			break
		}
		left := ansi.Truncate(lines[r], col, "")
		if pad := col - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		lines[r] = ansi.Truncate(left+"\x1b[0m"+boxLine, width, "")
	}
	return strings.Join(lines, "\n")
}

// renderBody lays the conversation and the dock side by side or stacked.
func (m *Model) renderBody() string {
	conv := m.viewport.View()
	if !m.nearBottom() {
		hint := m.theme.ScrollHint.Render("more below · C-g to jump to the latest")
		lines := strings.Split(conv, "\n")
		if len(lines) > 0 {
			lines[len(lines)-1] = hint
		}
		conv = strings.Join(lines, "\n")
	}

	if !m.dock.IsOpen() {
		return conv
	}

	dv := components.NewDockView(m.dock, m.previewURL())
	dv.Offset = m.dockOffset
	if m.dockBeside() {
		dv.Width = m.width - m.conversationWidth()
		dv.Height = m.bodyHeight()
		return lipgloss.JoinHorizontal(lipgloss.Top, conv, components.RenderDock(m.theme, dv))
	}
	dv.Width = m.width
	dv.Height = m.dockHeight()
	return lipgloss.JoinVertical(lipgloss.Left, conv, components.RenderDock(m.theme, dv))
}

// renderConversation draws every message and records where each starts.
func (m *Model) renderConversation() string {
	msgs := m.mgr.Messages()
	if len(msgs) == 0 {
		return m.renderWelcome()
	}

	width := m.conversationWidth() - 2
	streaming := m.mgr.IsStreaming()
	m.offsets = make(map[string]int, len(msgs))

	var b strings.Builder
	line := 0
	for i, msg := range msgs {
		view := components.MessageView{
			Selected:  m.selecting && i == m.cursor,
			Streaming: streaming && i == len(msgs)-1 && msg.Role == model.RoleAssistant,
			Editing:   msg.ID == m.editingID,
		}
		block := components.RenderMessage(m.theme, m.md, msg, width, view)
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}
		m.offsets[msg.ID] = line
		b.WriteString(block)
		line += lipgloss.Height(block) - 1
	}

	if streaming {
		if last := msgs[len(msgs)-1]; last.Role != model.RoleAssistant {
			b.WriteString("\n\n" + m.spinner.View() + m.theme.Muted.Render(" thinking..."))
		}
	}
	return b.String()
}

func (m *Model) renderWelcome() string {
	title := m.theme.HeaderBrand.Render("ZEN")
	lines := []string{
		"",
		"  " + title + m.theme.Muted.Render("  ask anything, or describe something to build"),
		"",
		m.theme.Muted.Render("  Build requests open a live preview of the generated page or chart."),
		m.theme.Muted.Render("  Press C-k for commands, F1 for shortcuts."),
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) renderHeader() string {
	left := m.theme.HeaderBrand.Render("ZEN") + " " + m.theme.HeaderModel.Render(m.mgr.CurrentModelID())
	var right []string
	if m.mgr.WebEnabled() {
		right = append(right, styles.StatusIndicators.Success+" web")
	}
	if u := m.mgr.User(); u != nil && u.Name != "" {
		right = append(right, u.Name)
	}
	if m.mgr.IsStreaming() {
		right = append(right, m.spinner.View()+" streaming")
	}
	return components.RenderStatusBar(m.theme, m.width, left, strings.Join(right, "  "))
}

func (m *Model) chipsVisible() bool {
	return !m.mgr.IsStreaming() && m.mgr.LastUserText() != "" && m.editingID == "" && !m.selecting
}

func (m *Model) renderChips() string {
	if !m.chipsVisible() {
		return ""
	}
	return components.RenderChips(m.theme, m.mgr.Suggestions(), m.chip, m.width-2)
}

func (m *Model) renderInput() string {
	label := ""
	if m.editingID != "" {
		label = m.theme.Muted.Render("editing message · enter to regenerate, esc to cancel") + "\n"
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(label + m.input.View())
}

func (m *Model) renderStatusBar() string {
	var left string
	switch {
	case m.selecting:
		left = components.KeyHint(m.theme, "↑/↓", "select", "e", "edit", "r", "reload", "esc", "done")
	case m.mgr.IsStreaming():
		left = components.KeyHint(m.theme, "esc", "stop", "C-k", "commands")
	case m.dock.IsOpen():
		left = components.KeyHint(m.theme, "C-t", "tab", "C-o", "open", "esc", "close dock", "C-k", "commands")
	default:
		left = components.KeyHint(m.theme, "enter", "send", "C-k", "commands", "C-l", "model", "F1", "help")
	}

	right := ""
	if stats := m.mgr.Stats(); stats != nil && !m.mgr.IsStreaming() {
		right = stats.Format()
	}
	return components.RenderStatusBar(m.theme, m.width, left, right)
}

func (m *Model) renderHelp() string {
	title := m.theme.HeaderBrand.Render("Keyboard shortcuts")
	body := m.help.View(m.keys)
	footer := m.theme.Muted.Render("F1 or esc to close")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.theme.Palette.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", footer)))
}
