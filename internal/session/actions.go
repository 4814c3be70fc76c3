// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/util"
)

// Action bar constants.
const (
	ShareTitle    = "ZEN Chat"
	ShareMaxRunes = 5000
	ArenaURL      = "https://us.zenai.world"

	copiedText     = "Copied conversation to clipboard."
	copyFailedText = "Copy failed: clipboard unavailable."
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript renders the log as markdown, one heading per message.
func (m *Manager) Transcript() string {
	msgs := m.conv.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, "## "+msg.Role.DisplayName()+"\n\n"+msg.Text())
	}
	return strings.Join(blocks, "\n\n")
}

// ExportFilename names a transcript export taken at t (UTC, second precision).
func ExportFilename(t time.Time) string {
	return "zen-chat-" + t.UTC().Format("2006-01-02T15:04:05") + ".md"
}

// ExportTranscript writes the transcript into dir and returns the file path.
func (m *Manager) ExportTranscript(dir string) (string, error) {
	path := filepath.Join(dir, ExportFilename(m.opts.Now()))
	if err := util.AtomicWriteFile(path, []byte(m.Transcript()), 0644); err != nil {
		m.notify(LevelError, "Export failed: "+err.Error())
		return "", errors.Wrap(err, "export transcript")
	}
	m.notify(LevelSuccess, "Exported "+filepath.Base(path))
	return path, nil
}

// =============================================================================
// CLIPBOARD AND SHARE
// =============================================================================

// CopyTranscript copies the whole conversation. Failures become a notice.
func (m *Manager) CopyTranscript() bool {
	if err := m.opts.Clipboard.Copy(m.Transcript()); err != nil {
		log.Warn().Err(err).Msg("copy transcript")
		m.notify(LevelWarning, copyFailedText)
		return false
	}
	m.notify(LevelSuccess, copiedText)
	return true
}

// CopyAnswer copies the latest cleaned assistant reply.
func (m *Manager) CopyAnswer() bool {
	text := m.LastAssistantText()
	if text == "" {
		return false
	}
	if err := m.opts.Clipboard.Copy(text); err != nil {
		log.Warn().Err(err).Msg("copy answer")
		m.notify(LevelWarning, copyFailedText)
		return false
	}
	m.notify(LevelSuccess, "Copied")
	return true
}

// Share hands the start of the transcript to the share target, falling back
// to the clipboard when sharing is not available. A cancelled share is not
// an error.
func (m *Manager) Share() {
	text := util.FirstRunes(m.Transcript(), ShareMaxRunes)
	if text == "" {
		text = ShareTitle
	}
	err := m.opts.Sharer.Share(ShareTitle, text)
	switch {
	case err == nil:
	case errors.Is(err, ErrShareUnsupported):
		m.CopyTranscript()
	default:
		log.Debug().Err(err).Msg("share cancelled")
	}
}

// =============================================================================
// TOGGLES
// =============================================================================

// WebEnabled reports the persisted web retrieval toggle.
func (m *Manager) WebEnabled() bool {
	v, ok, err := m.opts.KV.Get(KeyWebEnabled)
	if err != nil || !ok {
		return false
	}
	return v == "1"
}

// SetWebEnabled persists the web retrieval toggle.
func (m *Manager) SetWebEnabled(enabled bool) {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := m.opts.KV.Set(KeyWebEnabled, v, 0); err != nil {
		log.Warn().Err(err).Msg("persist web toggle")
	}
}

// CurrentModelID returns the selected model, or the first catalog entry.
func (m *Manager) CurrentModelID() string {
	if sel, ok := m.SelectedModel(); ok {
		return sel.ID
	}
	if models := m.Models(); len(models) > 0 {
		return models[0].ID
	}
	return ""
}

// Metrics measures the pending input against the metrics model.
func Metrics(input string) model.InputMetrics {
	return model.MeasureInput(input, model.MetricsModel)
}
