// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/zen-tui/internal/model"
)

func TestTranscript(t *testing.T) {
	h := newHarness(
		msg("u1", model.RoleUser, "q"),
		msg("a1", model.RoleAssistant, "r"),
	)
	assert.Equal(t, "## You\n\nq\n\n## Assistant\n\nr", h.mgr.Transcript())
}

func TestCopyTranscript(t *testing.T) {
	h := newHarness(msg("u1", model.RoleUser, "q"))

	require.True(t, h.mgr.CopyTranscript())
	assert.Equal(t, "## You\n\nq", h.clip.text)
	assert.Equal(t, Notice{Level: LevelSuccess, Text: "Copied conversation to clipboard."}, h.notifier.last())

	h.clip.err = errors.New("denied")
	assert.False(t, h.mgr.CopyTranscript())
	assert.Equal(t, Notice{Level: LevelWarning, Text: "Copy failed: clipboard unavailable."}, h.notifier.last())
}

func TestCopyAnswer(t *testing.T) {
	h := newHarness()
	assert.False(t, h.mgr.CopyAnswer())

	h = newHarness(msg("u1", model.RoleUser, "q"), msg("a1", model.RoleAssistant, "  answer  "))
	require.True(t, h.mgr.CopyAnswer())
	assert.Equal(t, "answer", h.clip.text)
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 999, time.FixedZone("X", 3600))
	assert.Equal(t, "zen-chat-2025-01-02T02:04:05.md", ExportFilename(ts))
}

func TestExportTranscript(t *testing.T) {
	h := newHarness(msg("u1", model.RoleUser, "q"))
	dir := t.TempDir()

	path, err := h.mgr.ExportTranscript(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "zen-chat-2025-03-04T05:06:07.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## You\n\nq", string(data))
}

func TestShare(t *testing.T) {
	long := strings.Repeat("x", 6000)
	h := newHarness(msg("u1", model.RoleUser, long))

	h.mgr.Share()
	assert.Equal(t, ShareTitle, h.sharer.title)
	assert.Equal(t, ShareMaxRunes, len([]rune(h.sharer.text)))
	assert.Empty(t, h.clip.text)
}

func TestShare_EmptyTranscript(t *testing.T) {
	h := newHarness()
	h.mgr.Share()
	assert.Equal(t, "ZEN Chat", h.sharer.text)
}

func TestShare_FallsBackToCopy(t *testing.T) {
	h := newHarness(msg("u1", model.RoleUser, "q"))
	h.sharer.err = ErrShareUnsupported

	h.mgr.Share()
	assert.Equal(t, "## You\n\nq", h.clip.text)
}

func TestShare_CancelIsQuiet(t *testing.T) {
	h := newHarness(msg("u1", model.RoleUser, "q"))
	h.sharer.err = errors.New("cancelled")

	h.mgr.Share()
	assert.Empty(t, h.clip.text)
	assert.Empty(t, h.notifier.notices)
}

func TestWebToggle(t *testing.T) {
	h := newHarness()
	assert.False(t, h.mgr.WebEnabled())

	h.mgr.SetWebEnabled(true)
	assert.True(t, h.mgr.WebEnabled())
	assert.Equal(t, "1", h.kv.data[KeyWebEnabled])

	h.mgr.SetWebEnabled(false)
	assert.False(t, h.mgr.WebEnabled())
	assert.Equal(t, "0", h.kv.data[KeyWebEnabled])
}

func TestDefaultsAreSafe(t *testing.T) {
	m := NewManager(Options{})
	assert.NotEmpty(t, m.ChatID())
	assert.Nil(t, m.User())
	assert.False(t, m.CopyTranscript())
	assert.Equal(t, model.DefaultCatalog[0].ID, m.CurrentModelID())

	req := m.Submit("hi")
	require.NotNil(t, req)
	assert.True(t, m.Complete(req.Epoch, nil))
}

func TestMetrics(t *testing.T) {
	got := Metrics("one two three")
	assert.Equal(t, 3, got.Words)
	assert.Equal(t, 4, got.Tokens)
}
