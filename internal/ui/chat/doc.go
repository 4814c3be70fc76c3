// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the main Bubble Tea model of the zen terminal UI.
//
// The model owns the session manager and the artifact dock; both are only
// touched from Update. Streams run in goroutines (StreamRunner) and post
// epoch-tagged messages back through the program, so output from a
// superseded request is dropped by the session manager.
//
// Layout: header, conversation viewport, optional dock (beside the
// conversation on wide terminals, below it otherwise), suggestion chips,
// input box, metrics line, status bar. The command palette and toasts are
// drawn over the layout.
package chat
