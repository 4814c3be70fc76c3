// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/pkg/errors"

var (
	// ErrMessageNotFound is returned when an edit or rewind names a message
	// that is not in the log.
	ErrMessageNotFound = errors.New("message not found")

	// ErrNoUserMessage is returned by a rerun when there is no user prompt
	// to resend.
	ErrNoUserMessage = errors.New("no user message to rerun")

	// ErrNotConfigured is returned by channels that lack credentials or an
	// endpoint.
	ErrNotConfigured = errors.New("backend not configured")

	// ErrStreamInterrupted is returned when a stream ends without its
	// terminating event.
	ErrStreamInterrupted = errors.New("stream interrupted")
)

// ErrShareUnsupported is returned by sharers with no share target; callers
// fall back to the clipboard.
var ErrShareUnsupported = errors.New("share not supported")

var errClipboardUnavailable = errors.New("clipboard unavailable")
