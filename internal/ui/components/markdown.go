// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
)

// MarkdownRenderer renders assistant Markdown for the terminal. The glamour
// renderer is rebuilt only when the wrap width changes.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	failed   bool
}

// NewMarkdownRenderer creates a renderer for a glamour style name
// ("dark", "light", "notty").
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	if style == "" {
		style = "dark"
	}
	return &MarkdownRenderer{style: style}
}

// Render wraps text at width. Rendering errors fall back to the plain text.
func (r *MarkdownRenderer) Render(text string, width int) string {
	if width < 20 {
		width = 20
	}
	if r.renderer == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			if !r.failed {
				log.Warn().Err(err).Str("style", r.style).Msg("markdown renderer unavailable")
				r.failed = true
			}
			return text
		}
		r.renderer, r.width = tr, width
	}

	out, err := r.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
