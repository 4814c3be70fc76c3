// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the rendering pieces of the zen terminal UI:
// message bubbles, the artifact dock, suggestion chips, toasts and the
// command palette. Components are plain values; the chat model owns them
// and drives them from its Update loop.
package components
