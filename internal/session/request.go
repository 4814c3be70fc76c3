// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/jeranaias/zen-tui/internal/model"
)

// Purpose says why a request was issued. It selects the failure notice.
type Purpose int

const (
	PurposeSubmit Purpose = iota
	PurposeRegenerate
	PurposeReload
	PurposeRerun
)

// String returns the purpose name used in logs.
func (p Purpose) String() string {
	switch p {
	case PurposeRegenerate:
		return "regenerate"
	case PurposeReload:
		return "reload"
	case PurposeRerun:
		return "rerun"
	default:
		return "submit"
	}
}

// Request describes one backend call.
type Request struct {
	Purpose Purpose
	ChatID  string

	// Messages is a snapshot of the log at issue time.
	Messages []model.Message

	// Body is the extra payload sent alongside the messages.
	Body map[string]any

	// Model is the selected model for this call, or nil for the backend
	// default.
	Model *model.SelectedModel

	// Web reports whether web retrieval is enabled for this call.
	Web bool

	// Epoch is the conversation generation this request belongs to.
	Epoch uint64

	IssuedAt time.Time
}

// LastUserText returns the flattened text of the last user message in the
// request.
func (r Request) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == model.RoleUser {
			return r.Messages[i].Text()
		}
	}
	return ""
}
