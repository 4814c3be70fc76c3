// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a highlighted, line-numbered view of source text.
type CodeBlock struct {
	Language string
	Code     string
	Width    int

	// Offset and Height select the visible window of lines; Height 0 shows
	// everything from Offset.
	Offset int
	Height int
}

// Lines returns the number of source lines.
func (c CodeBlock) Lines() int {
	if c.Code == "" {
		return 0
	}
	return strings.Count(c.Code, "\n") + 1
}

// Render highlights the visible window of the block.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	lines := strings.Split(HighlightCode(code, c.Language), "\n")

	start := c.Offset
	if start > len(lines) {
		start = len(lines)
	}
	if start < 0 {
		start = 0
	}
	end := len(lines)
	if c.Height > 0 && start+c.Height < end {
		end = start + c.Height
	}

	gutter := len(strconv.Itoa(len(lines)))
	if gutter < 3 {
		gutter = 3
	}
	numStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(gutter).
		Align(lipgloss.Right).
		MarginRight(1)

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, numStyle.Render(strconv.Itoa(i+1))+lines[i])
	}

	block := strings.Join(out, "\n")
	if c.Width > 0 {
		block = lipgloss.NewStyle().MaxWidth(c.Width).Render(block)
	}
	return block
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// HighlightCode applies terminal syntax highlighting. Unknown languages are
// detected from the code; any failure returns the code unchanged.
func HighlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
