// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"os"

	"github.com/jeranaias/zen-tui/internal/session"
)

// EnvIdentity reads the signed-in user from ZEN_USER_ID, ZEN_USER_NAME and
// ZEN_USER_EMAIL. Without an id the user is a guest.
type EnvIdentity struct{}

// CurrentUser returns the user or nil.
func (EnvIdentity) CurrentUser() *session.User {
	id := os.Getenv("ZEN_USER_ID")
	if id == "" {
		return nil
	}
	return &session.User{
		ID:    id,
		Name:  os.Getenv("ZEN_USER_NAME"),
		Email: os.Getenv("ZEN_USER_EMAIL"),
	}
}

// Sharer has no platform share target in a terminal; sharing falls back to
// the clipboard.
type Sharer struct{}

// Share always reports that sharing is unsupported.
func (Sharer) Share(title, text string) error {
	return session.ErrShareUnsupported
}
