// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/export"
	"github.com/jeranaias/zen-tui/internal/host"
	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/ui/components"
	"github.com/jeranaias/zen-tui/internal/util"
)

// Palette kinds.
const (
	paletteCommands = "commands"
	paletteModels   = "models"
	paletteRerun    = "rerun"
	paletteHistory  = "history"
)

// Command IDs of the command palette.
const (
	cmdNewChat        = "new-chat"
	cmdCopyTranscript = "copy-transcript"
	cmdCopyAnswer     = "copy-answer"
	cmdExport         = "export"
	cmdExportHTML     = "export-html"
	cmdShare          = "share"
	cmdToggleWeb      = "toggle-web"
	cmdSwitchModel    = "switch-model"
	cmdRerun          = "rerun"
	cmdHistory        = "history"
	cmdArena          = "arena"
	cmdOpenPreview    = "open-preview"
	cmdHelp           = "help"
	cmdQuit           = "quit"
)

// =============================================================================
// PALETTES
// =============================================================================

func (m *Model) commandItems() []components.PaletteItem {
	web := "Enable web search"
	if m.mgr.WebEnabled() {
		web = "Disable web search"
	}
	return []components.PaletteItem{
		{ID: cmdNewChat, Title: "New chat", Hint: "start over"},
		{ID: cmdCopyTranscript, Title: "Copy conversation", Hint: "markdown transcript"},
		{ID: cmdCopyAnswer, Title: "Copy last answer", Hint: "C-y"},
		{ID: cmdExport, Title: "Export transcript", Hint: "markdown file"},
		{ID: cmdExportHTML, Title: "Export as HTML", Hint: "standalone page"},
		{ID: cmdShare, Title: "Share", Hint: "falls back to copy"},
		{ID: cmdToggleWeb, Title: web},
		{ID: cmdSwitchModel, Title: "Switch model", Hint: "C-l"},
		{ID: cmdRerun, Title: "Re-run with another model", Hint: "C-r"},
		{ID: cmdHistory, Title: "Open history", Hint: "M-h"},
		{ID: cmdArena, Title: "Open arena", Hint: host.ArenaURL},
		{ID: cmdOpenPreview, Title: "Open live preview", Hint: "C-o"},
		{ID: cmdHelp, Title: "Keyboard shortcuts", Hint: "F1"},
		{ID: cmdQuit, Title: "Quit", Hint: "C-c"},
	}
}

func modelItems(models []model.ModelInfo, current string) []components.PaletteItem {
	items := make([]components.PaletteItem, 0, len(models))
	for _, mi := range models {
		hint := mi.ID
		if mi.ID == current {
			hint = "current · " + mi.ID
		}
		items = append(items, components.PaletteItem{ID: mi.ID, Title: mi.Label, Hint: hint})
	}
	return items
}

func (m *Model) openCommands() tea.Cmd {
	return m.palette.Open(paletteCommands, "Commands", m.commandItems())
}

func (m *Model) openModels() tea.Cmd {
	return m.palette.Open(paletteModels, "Switch model", modelItems(m.mgr.Models(), m.mgr.CurrentModelID()))
}

func (m *Model) openRerun() tea.Cmd {
	if m.mgr.LastUserText() == "" {
		m.toasts.Add(session.LevelInfo, "Nothing to re-run yet.")
		return m.startToastTicker()
	}
	return m.palette.Open(paletteRerun, "Re-run with model", modelItems(model.RerunModels, m.mgr.CurrentModelID()))
}

func (m *Model) openHistory() tea.Cmd {
	if m.opts.History == nil {
		m.toasts.Add(session.LevelInfo, "History is not available.")
		return m.startToastTicker()
	}
	metas, err := m.opts.History.List()
	if err != nil {
		log.Warn().Err(err).Msg("list history")
		m.toasts.Add(session.LevelError, "Could not read history: "+err.Error())
		return m.startToastTicker()
	}
	items := make([]components.PaletteItem, 0, len(metas))
	for _, meta := range metas {
		items = append(items, components.PaletteItem{
			ID:    meta.ID,
			Title: util.FirstRunes(components.UserPromptText(meta.Summary), 60),
			Hint:  fmt.Sprintf("%d msgs · %s", meta.MessageCount, humanize.Time(meta.UpdatedAt)),
		})
	}
	return m.palette.Open(paletteHistory, "History", items)
}

// =============================================================================
// SELECTION
// =============================================================================

func (m *Model) handlePaletteSelect(msg components.PaletteSelectMsg) tea.Cmd {
	switch msg.Kind {
	case paletteModels:
		sel := m.mgr.SwitchModel(msg.Item.ID)
		m.toasts.Add(session.LevelSuccess, "Model: "+sel.ID)
		return nil

	case paletteRerun:
		req, err := m.mgr.RerunWithModel(msg.Item.ID)
		if err != nil {
			m.toasts.Add(session.LevelWarning, err.Error())
			return nil
		}
		m.buildHint = intent.IsBuildIntent(req.LastUserText())
		m.follow = true
		return m.start(req)

	case paletteHistory:
		return m.loadChat(msg.Item.ID)

	case paletteCommands:
		return m.runCommand(msg.Item.ID)
	}
	return nil
}

func (m *Model) runCommand(id string) tea.Cmd {
	switch id {
	case cmdNewChat:
		m.runner.Stop()
		m.mgr.NewChat()
		m.resetView()
	case cmdCopyTranscript:
		m.mgr.CopyTranscript()
	case cmdCopyAnswer:
		m.mgr.CopyAnswer()
	case cmdExport:
		if _, err := m.mgr.ExportTranscript(m.exportDir()); err != nil {
			log.Warn().Err(err).Msg("export transcript")
		}
	case cmdExportHTML:
		m.exportHTML()
	case cmdShare:
		m.mgr.Share()
	case cmdToggleWeb:
		m.mgr.SetWebEnabled(!m.mgr.WebEnabled())
		state := "off"
		if m.mgr.WebEnabled() {
			state = "on"
		}
		m.toasts.Add(session.LevelInfo, "Web search "+state)
	case cmdSwitchModel:
		return m.openModels()
	case cmdRerun:
		return m.openRerun()
	case cmdHistory:
		return m.openHistory()
	case cmdArena:
		open := m.opts.Open
		return func() tea.Msg {
			return previewOpenedMsg{Target: host.ArenaURL, Err: open(host.ArenaURL)}
		}
	case cmdOpenPreview:
		return m.openPreview()
	case cmdHelp:
		m.showHelp = true
	case cmdQuit:
		m.quitting = true
		m.runner.Stop()
		return tea.Quit
	}
	return nil
}

// loadChat replaces the session with a saved chat.
func (m *Model) loadChat(id string) tea.Cmd {
	conv, err := m.opts.History.Load(id)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", id).Msg("load chat")
		m.toasts.Add(session.LevelError, "Could not load chat: "+err.Error())
		return nil
	}
	m.runner.Stop()
	m.mgr.Load(conv.ID, conv.Messages)
	m.resetView()
	m.toasts.Add(session.LevelInfo, "Loaded "+util.FirstRunes(components.UserPromptText(conv.Summary), 40))
	return nil
}

// resetView clears per-chat UI state.
func (m *Model) resetView() {
	m.dock.Reset()
	m.publishedRevision = m.dock.Revision()
	if m.opts.Preview != nil {
		m.opts.Preview.Publish("")
	}
	m.editingID = ""
	m.selecting = false
	m.chip = -1
	m.buildHint = false
	m.follow = true
	m.input.Reset()
	m.input.Focus()
}

func (m *Model) exportDir() string {
	if m.opts.ExportDir != "" {
		return m.opts.ExportDir
	}
	return "."
}

// exportHTML writes the conversation as a standalone HTML page.
func (m *Model) exportHTML() {
	opts := export.DefaultOptions()
	opts.OutputDir = m.exportDir()
	if m.theme.GlamourStyle() == "light" {
		opts.Theme = "light"
	}
	exporter, err := export.ForFormat("html", opts)
	if err != nil {
		m.toasts.Add(session.LevelError, "Export failed: "+err.Error())
		return
	}
	conv := export.FromConversation(m.mgr.Conversation(), m.mgr.CurrentModelID())
	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		log.Warn().Err(err).Msg("export html")
		m.toasts.Add(session.LevelError, "Export failed: "+err.Error())
		return
	}
	m.toasts.Add(session.LevelSuccess, "Exported "+filepath.Base(path))
}
