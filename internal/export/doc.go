// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to shareable files.
//
// # Formats
//
//   - Markdown: front matter, one heading per message
//   - HTML: the Markdown rendered with goldmark into a standalone page
//   - JSON: the stored conversation as-is
//
// Exported text is the flattened message text, with the output block that
// build prompts carry stripped from user messages.
package export
