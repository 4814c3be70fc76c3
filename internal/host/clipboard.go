// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package host

import (
	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
)

// ErrClipboardUnavailable is returned when no system clipboard tool exists
// (for example xclip or wl-copy missing on Linux).
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard writes to the system clipboard.
type Clipboard struct{}

// Copy places text on the system clipboard.
func (Clipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errors.Wrap(err, "write clipboard")
	}
	return nil
}
