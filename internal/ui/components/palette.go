// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/ui/styles"
	"github.com/jeranaias/zen-tui/internal/util"
)

// =============================================================================
// COMMAND PALETTE
// =============================================================================

// PaletteItem is one selectable entry.
type PaletteItem struct {
	ID    string
	Title string
	Hint  string
}

// PaletteSelectMsg is sent when an item is chosen.
type PaletteSelectMsg struct {
	Kind string
	Item PaletteItem
}

// Palette is a filterable overlay list. Kind tags the selection message so
// one palette type can serve the command list and the model pickers.
type Palette struct {
	Kind  string
	Title string

	input    textinput.Model
	items    []PaletteItem
	filtered []PaletteItem
	selected int
	visible  bool
	width    int
	maxItems int
	theme    *styles.Theme
}

// NewPalette creates a hidden palette.
func NewPalette(theme *styles.Theme) *Palette {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	return &Palette{input: ti, theme: theme, maxItems: 10, width: 60}
}

// Open shows the palette with a fresh item list.
func (p *Palette) Open(kind, title string, items []PaletteItem) tea.Cmd {
	p.Kind, p.Title = kind, title
	p.items = items
	p.input.SetValue("")
	p.visible = true
	p.filter()
	return p.input.Focus()
}

// Close hides the palette.
func (p *Palette) Close() {
	p.visible = false
	p.input.Blur()
}

// IsVisible reports whether the palette is shown.
func (p *Palette) IsVisible() bool { return p.visible }

// SetWidth sets the overlay width.
func (p *Palette) SetWidth(w int) {
	p.width = w
	p.input.Width = w - 8
}

// Filtered returns the items matching the current query, best first.
func (p *Palette) Filtered() []PaletteItem { return p.filtered }

// Selected returns the highlighted index.
func (p *Palette) Selected() int { return p.selected }

// Update handles keys while visible.
func (p *Palette) Update(msg tea.Msg) (*Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.Close()
			return p, nil
		case "enter":
			if p.selected < len(p.filtered) {
				sel := PaletteSelectMsg{Kind: p.Kind, Item: p.filtered[p.selected]}
				p.Close()
				return p, func() tea.Msg { return sel }
			}
			return p, nil
		case "up", "ctrl+p", "shift+tab":
			if n := len(p.filtered); n > 0 {
				p.selected = (p.selected - 1 + n) % n
			}
			return p, nil
		case "down", "ctrl+n", "tab":
			if n := len(p.filtered); n > 0 {
				p.selected = (p.selected + 1) % n
			}
			return p, nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.filter()
	}
	return p, cmd
}

func (p *Palette) filter() {
	query := strings.TrimSpace(p.input.Value())
	type scored struct {
		item  PaletteItem
		score int
		order int
	}
	var matches []scored
	for i, item := range p.items {
		score, ok := FuzzyMatch(query, item.Title)
		if !ok {
			score, ok = FuzzyMatch(query, item.ID)
		}
		if ok {
			matches = append(matches, scored{item, score, i})
		}
	}
	if query != "" {
		sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	}
	p.filtered = p.filtered[:0]
	for _, m := range matches {
		p.filtered = append(p.filtered, m.item)
	}
	p.selected = 0
}

// View renders the overlay.
func (p *Palette) View() string {
	if !p.visible {
		return ""
	}
	t := p.theme
	inner := p.width - 4

	lines := []string{t.DockTitle.Render(p.Title), p.input.View(), ""}
	if len(p.filtered) == 0 {
		lines = append(lines, t.Muted.Render("No matches"))
	}
	start := 0
	if p.selected >= p.maxItems {
		start = p.selected - p.maxItems + 1
	}
	for i := start; i < len(p.filtered) && i < start+p.maxItems; i++ {
		item := p.filtered[i]
		text := util.TruncateWidth(item.Title, inner-2)
		if item.Hint != "" {
			text += "  " + t.Muted.Render(util.TruncateWidth(item.Hint, inner/2))
		}
		if i == p.selected {
			lines = append(lines, t.PaletteSelected.Width(inner).Render(text))
		} else {
			lines = append(lines, t.PaletteItem.Render(text))
		}
	}
	lines = append(lines, "", t.Muted.Render("[enter] select  [esc] close"))
	return t.Palette.Width(inner + 2).Render(strings.Join(lines, "\n"))
}
