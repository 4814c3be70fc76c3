// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/zen-tui/internal/config"
	"github.com/jeranaias/zen-tui/internal/model"
)

// =============================================================================
// STREAM MESSAGES
// =============================================================================

// StreamIncrementMsg carries one increment of the request issued at Epoch.
type StreamIncrementMsg struct {
	Epoch     uint64
	Increment model.Increment
}

// StreamDoneMsg ends the request issued at Epoch. Err is nil on success.
type StreamDoneMsg struct {
	Epoch uint64
	Err   error
}

// =============================================================================
// EXTERNAL EVENTS
// =============================================================================

// HistoryUpdatedMsg reports that a chat was persisted.
type HistoryUpdatedMsg struct {
	ChatID string
}

// ConfigReloadedMsg carries a configuration re-read from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// previewOpenedMsg reports the result of opening the preview.
type previewOpenedMsg struct {
	Target string
	Err    error
}
