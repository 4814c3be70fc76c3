// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kvstore provides the small expiring key-value slots the chat keeps
// between runs: the selected model for the next request and the web toggle.
//
// Two implementations are provided:
//   - SQLiteStore persists slots in a SQLite file (pure Go driver)
//   - MemoryStore keeps them in process, for tests and --ephemeral runs
//
// A zero TTL means the slot never expires. Expired slots read as missing and
// are removed lazily.
package kvstore
