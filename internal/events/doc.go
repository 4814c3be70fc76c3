// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events carries in-process notifications between the chat session
// and its observers, such as the history list.
//
// The bus is a watermill gochannel pub/sub. Publishing never blocks on
// subscribers, so the UI loop can notify fire-and-forget.
package events
