// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the zen command line.
//
// # Commands
//
//   - chat: the terminal UI (default when no command is given)
//   - repl: line-mode chat with input history
//   - classify: intent and artifact classification of stdin
//   - render: build the sandbox preview document for stdin
//   - history: list, show, search and delete saved chats
//   - export: write a saved chat as markdown, HTML or JSON
//   - tokens: word, token and cost estimates
//   - config: show and edit ~/.zen/config.toml
//   - version
//
// Every command reads the same configuration; --config points at another
// file and --log-level overrides the configured level.
package cli
