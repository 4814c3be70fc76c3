// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps completed chats on disk for the history list.
//
// Each chat is one JSON file named after its chat id. Writes are atomic, and
// the oldest chats are pruned once MaxConversations is exceeded.
//
// # Key Types
//
//   - ConversationStore: Save, Load, List, Search and Delete
//   - StoredConversation: Serializable chat with metadata
//   - ConversationMeta: Lightweight metadata for listing
//
// # Usage
//
//	store, err := storage.NewConversationStoreWithDir(dir)
//	err = store.SaveConversation(chatID, msgs)   // session.Archive
//	metas, err := store.List()
//	conv, err := store.Load(metas[0].ID)
//
// # Storage Location
//
// Chats are stored in ~/.zen/conversations/ unless [store] dir is set.
package storage
