// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/ui/components"
	"github.com/jeranaias/zen-tui/internal/util"
)

// previewFile names the fallback preview written to the temp directory.
const previewFile = "zen-preview.html"

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.follow = m.nearBottom()
		return m, cmd

	case StreamIncrementMsg:
		if m.mgr.ApplyIncrement(msg.Epoch, msg.Increment) {
			cmds = append(cmds, m.observeDock())
			m.refresh()
		}
		return m, tea.Batch(cmds...)

	case StreamDoneMsg:
		if m.mgr.Complete(msg.Epoch, msg.Err) {
			if msg.Err == nil {
				cmds = append(cmds, m.observeDock())
				if stats := m.mgr.Stats(); stats != nil {
					log.Debug().Str("chat_id", m.mgr.ChatID()).Str("stats", stats.Format()).Msg("answer complete")
				}
			}
			m.refresh()
			cmds = append(cmds, m.startToastTicker())
		}
		return m, tea.Batch(cmds...)

	case components.PaletteSelectMsg:
		cmd := m.handlePaletteSelect(msg)
		m.refresh()
		return m, tea.Batch(cmd, m.startToastTicker())

	case HistoryUpdatedMsg:
		log.Debug().Str("chat_id", msg.ChatID).Msg("history updated")
		if m.palette.IsVisible() && m.palette.Kind == paletteHistory {
			cmds = append(cmds, m.openHistory())
		}
		cmds = append(cmds, m.waitForHistory())
		return m, tea.Batch(cmds...)

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.opts.ShowMetrics = msg.Config.UI.ShowMetrics
			m.refresh()
		}
		return m, nil

	case previewOpenedMsg:
		if msg.Err != nil {
			m.toasts.Add(session.LevelWarning, "Could not open browser: "+msg.Err.Error())
			return m, m.startToastTicker()
		}
		return m, nil

	case components.ToastTickMsg:
		if m.toasts.Tick() {
			return m, components.ToastTickCmd()
		}
		m.toastTicker = false
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	if m.palette.IsVisible() {
		_, cmd = m.palette.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.runner.Stop()
		return tea.Quit
	}

	if m.palette.IsVisible() {
		_, cmd := m.palette.Update(msg)
		return cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Cancel) {
			m.showHelp = false
		}
		return nil
	}

	if m.selecting {
		return m.handleSelectKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil

	case key.Matches(msg, m.keys.Palette):
		return m.openCommands()

	case key.Matches(msg, m.keys.Models):
		return m.openModels()

	case key.Matches(msg, m.keys.Rerun):
		return m.openRerun()

	case key.Matches(msg, m.keys.History):
		return m.openHistory()

	case key.Matches(msg, m.keys.Cancel):
		return m.handleEscape()

	case key.Matches(msg, m.keys.SelectMode):
		if n := len(m.mgr.Messages()); n > 0 {
			m.selecting = true
			m.cursor = n - 1
			m.input.Blur()
			m.refresh()
		}
		return nil

	case key.Matches(msg, m.keys.ToggleTab):
		if m.dock.ToggleTab() {
			m.dockOffset = 0
		}
		return nil

	case key.Matches(msg, m.keys.OpenPreview):
		return m.openPreview()

	case key.Matches(msg, m.keys.DockUp):
		if m.dockOffset > 0 {
			m.dockOffset--
		}
		return nil

	case key.Matches(msg, m.keys.DockDown):
		if lines := strings.Count(m.dock.CodeView(), "\n") + 1; m.dock.IsOpen() && m.dockOffset < lines-1 {
			m.dockOffset++
		}
		return nil

	case key.Matches(msg, m.keys.CopyAnswer):
		m.mgr.CopyAnswer()
		return m.startToastTicker()

	case key.Matches(msg, m.keys.AskChip):
		return m.askChip()

	case key.Matches(msg, m.keys.NextChip):
		m.cycleChip(1)
		return nil

	case key.Matches(msg, m.keys.PrevChip):
		m.cycleChip(-1)
		return nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		m.follow = m.nearBottom()
		return nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		m.follow = m.nearBottom()
		return nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.follow = true
		return nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// handleEscape backs out one level: edit, stream, chip, then dock.
func (m *Model) handleEscape() tea.Cmd {
	switch {
	case m.editingID != "":
		m.editingID = ""
		m.input.Reset()
	case m.mgr.IsStreaming():
		m.runner.Stop()
	case m.chip >= 0:
		m.chip = -1
	case m.dock.IsOpen():
		m.dock.Dismiss()
		m.dockOffset = 0
		m.refresh()
	}
	return nil
}

// handleSelectKey drives message selection mode.
func (m *Model) handleSelectKey(msg tea.KeyMsg) tea.Cmd {
	msgs := m.mgr.Messages()
	if len(msgs) == 0 {
		m.exitSelect()
		return nil
	}
	if m.cursor >= len(msgs) {
		m.cursor = len(msgs) - 1
	}
	selected := msgs[m.cursor]

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.SelectMode):
		m.exitSelect()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.refresh()

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(msgs)-1 {
			m.cursor++
		}
		m.refresh()

	case key.Matches(msg, m.keys.Edit):
		if selected.Role != model.RoleUser {
			m.toasts.Add(session.LevelInfo, "Only your own messages can be edited.")
			return m.startToastTicker()
		}
		m.editingID = selected.ID
		m.SetInput(components.UserPromptText(selected.Text()))
		m.exitSelect()

	case key.Matches(msg, m.keys.Reload):
		req, err := m.mgr.RewindAndReload(selected.ID)
		m.exitSelect()
		if err != nil {
			m.toasts.Add(session.LevelError, err.Error())
			return m.startToastTicker()
		}
		m.buildHint = intent.IsBuildIntent(m.mgr.LastUserText())
		return m.start(req)
	}
	return nil
}

func (m *Model) exitSelect() {
	m.selecting = false
	m.input.Focus()
	m.refresh()
}

// cycleChip moves the chip highlight by delta, wrapping through "none".
func (m *Model) cycleChip(delta int) {
	if !m.chipsVisible() {
		return
	}
	n := len(m.mgr.Suggestions().All())
	if n == 0 {
		return
	}
	// Positions: -1 (none), 0..n-1.
	m.chip = (m.chip+1+delta+n+1)%(n+1) - 1
}

// askChip sends the highlighted suggestion as a question of its own.
func (m *Model) askChip() tea.Cmd {
	all := m.mgr.Suggestions().All()
	if m.chip < 0 || m.chip >= len(all) || !m.chipsVisible() {
		return nil
	}
	text := all[m.chip]
	m.chip = -1
	m.buildHint = intent.IsBuildIntent(text)
	m.follow = true
	return m.start(m.mgr.Ask(text))
}

// handleSubmit sends the input, inserts the highlighted chip, or finishes an
// edit.
func (m *Model) handleSubmit() tea.Cmd {
	if m.chip >= 0 {
		all := m.mgr.Suggestions().All()
		if m.chip < len(all) {
			m.SetInput(intent.InsertQuickPrompt(m.input.Value(), all[m.chip]))
		}
		m.chip = -1
		return nil
	}

	text := m.input.Value()

	if m.editingID != "" {
		id := m.editingID
		m.editingID = ""
		req, err := m.mgr.EditAndRegenerate(id, text)
		if err != nil {
			m.toasts.Add(session.LevelError, err.Error())
			return m.startToastTicker()
		}
		m.input.Reset()
		m.buildHint = intent.IsBuildIntent(text)
		m.follow = true
		return m.start(req)
	}

	req := m.mgr.Submit(text)
	if req == nil {
		return nil
	}
	m.input.Reset()
	m.buildHint = intent.IsBuildIntent(text)
	m.follow = true
	return m.start(req)
}

// start hands a request to the runner.
func (m *Model) start(req *session.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	m.runner.Start(req)
	m.refresh()
	return m.spinner.Tick
}

// =============================================================================
// DOCK AND PREVIEW
// =============================================================================

// observeDock feeds the latest reply to the dock and publishes a changed
// document to the live preview.
func (m *Model) observeDock() tea.Cmd {
	change := m.dock.Observe(m.mgr.LastAssistantText(), m.buildHint)
	if change == artifact.ChangeNone {
		return nil
	}
	if change == artifact.ChangeOpened {
		m.dockOffset = 0
	}
	if rev := m.dock.Revision(); rev != m.publishedRevision {
		m.publishedRevision = rev
		if m.opts.Preview != nil {
			m.opts.Preview.Publish(m.dock.Document())
		}
	}
	if change == artifact.ChangeOpened && m.opts.OpenBrowser {
		return m.openPreview()
	}
	return nil
}

// previewURL returns the live preview address, or "".
func (m *Model) previewURL() string {
	if m.opts.Preview == nil {
		return ""
	}
	return m.opts.Preview.URL()
}

// openPreview opens the live preview in the browser. Without a preview
// server the document is written to a temporary file and opened from there.
func (m *Model) openPreview() tea.Cmd {
	if !m.dock.IsOpen() {
		m.toasts.Add(session.LevelInfo, "Nothing to preview yet.")
		return m.startToastTicker()
	}
	target := m.previewURL()
	if target == "" {
		path := filepath.Join(os.TempDir(), previewFile)
		if err := util.AtomicWriteFile(path, []byte(m.dock.Document()), 0600); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("write preview file")
			m.toasts.Add(session.LevelError, "Could not write preview: "+err.Error())
			return m.startToastTicker()
		}
		target = "file://" + filepath.ToSlash(path)
	}
	open := m.opts.Open
	return func() tea.Msg {
		return previewOpenedMsg{Target: target, Err: open(target)}
	}
}

// startToastTicker starts the expiry loop if toasts are showing.
func (m *Model) startToastTicker() tea.Cmd {
	if m.toastTicker || len(m.toasts.Toasts()) == 0 {
		return nil
	}
	m.toastTicker = true
	return components.ToastTickCmd()
}
