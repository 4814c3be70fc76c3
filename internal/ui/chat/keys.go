// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the chat screen.
type KeyMap struct {
	Submit      key.Binding
	Cancel      key.Binding
	Quit        key.Binding
	Palette     key.Binding
	Models      key.Binding
	Rerun       key.Binding
	History     key.Binding
	AskChip     key.Binding
	NextChip    key.Binding
	PrevChip    key.Binding
	SelectMode  key.Binding
	Up          key.Binding
	Down        key.Binding
	Edit        key.Binding
	Reload      key.Binding
	ToggleTab   key.Binding
	OpenPreview key.Binding
	DockUp      key.Binding
	DockDown    key.Binding
	CopyAnswer  key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Bottom      key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back / close dock"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("C-k", "commands"),
		),
		Models: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "switch model"),
		),
		Rerun: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "re-run with model"),
		),
		History: key.NewBinding(
			key.WithKeys("alt+h"),
			key.WithHelp("M-h", "history"),
		),
		AskChip: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("M-enter", "ask suggestion"),
		),
		NextChip: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next suggestion"),
		),
		PrevChip: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous suggestion"),
		),
		SelectMode: key.NewBinding(
			key.WithKeys("ctrl+up", "alt+up"),
			key.WithHelp("C-up", "select messages"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous message"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next message"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit and regenerate"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rewind and reload"),
		),
		ToggleTab: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "preview/code"),
		),
		OpenPreview: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "open preview"),
		),
		DockUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("S-up", "scroll dock up"),
		),
		DockDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("S-down", "scroll dock down"),
		),
		CopyAnswer: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy answer"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end", "ctrl+g"),
			key.WithHelp("C-g", "scroll to bottom"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Palette, k.Models, k.SelectMode, k.Help, k.Quit}
}

// FullHelp returns the grouped bindings for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.NextChip, k.PrevChip, k.AskChip, k.Cancel},
		{k.SelectMode, k.Up, k.Down, k.Edit, k.Reload},
		{k.Palette, k.Models, k.Rerun, k.History, k.CopyAnswer},
		{k.ToggleTab, k.OpenPreview, k.DockUp, k.DockDown},
		{k.PageUp, k.PageDown, k.Bottom},
		{k.Help, k.Quit},
	}
}
