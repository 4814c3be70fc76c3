// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, their derived sections, and the model
// catalog used for reruns and cost estimates.
//
// # Key Types
//
//   - Message: Single message with role and content (text or ordered parts)
//   - Content: Message body accepting both the plain and the multi-part form
//   - Conversation: Ordered message log guarded by a generation counter (epoch)
//   - Section: One user turn plus the assistant replies that follow it
//   - ModelInfo / SelectedModel: Catalog entries and the active model identity
//
// # Usage
//
// Build a log and derive its sections:
//
//	conv := model.NewConversation("chat-1")
//	conv.Append(model.NewMessage(model.RoleUser, model.TextContent("Hello!")))
//	for _, s := range conv.Sections() {
//	    fmt.Println(s.ID, s.User.Text(), len(s.Assistant))
//	}
//
// Flatten any message body to plain text:
//
//	text := model.ExtractText(msg.Content)
package model
