// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// MessageView carries the per-message render flags.
type MessageView struct {
	Selected  bool
	Streaming bool
	Editing   bool
}

// RenderMessage draws one message. User prompts show without the appended
// output block; assistant text is rendered as Markdown.
func RenderMessage(theme *styles.Theme, md *MarkdownRenderer, msg model.Message, width int, view MessageView) string {
	if width < 24 {
		width = 24
	}

	var label, body string
	switch msg.Role {
	case model.RoleUser:
		label = theme.UserLabel.Render(msg.Role.DisplayName())
		body = theme.UserBubble.Width(width - 4).Render(UserPromptText(msg.Text()))
	case model.RoleAssistant:
		label = theme.AssistantLabel.Render(msg.Role.DisplayName())
		text := msg.Text()
		if strings.TrimSpace(text) == "" && view.Streaming {
			text = "_thinking..._"
		}
		body = theme.AssistantBody.Render(md.Render(text, width-4))
	default:
		label = theme.SystemLabel.Render(msg.Role.DisplayName())
		body = theme.SystemBubble.Width(width - 2).Render(msg.Text())
	}

	if view.Streaming {
		label += theme.Muted.Render("  streaming")
	}
	if view.Editing {
		label += theme.Muted.Render("  editing")
	}

	out := lipgloss.JoinVertical(lipgloss.Left, label, body)
	if view.Selected {
		bar := lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderLeft(true).
			BorderForeground(styles.Cyan)
		out = bar.Render(out)
	}
	return out
}

// UserPromptText strips the output block appended to build prompts.
func UserPromptText(text string) string {
	if i := strings.Index(text, intent.SteerMarker); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
