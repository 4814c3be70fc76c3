// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the message log of the active chat.
//
// The Manager orders messages, performs the destructive edits (edit and
// regenerate, rewind and reload), re-keys the backend model for a rerun, and
// merges streamed increments. Every operation that needs the backend returns a
// *Request; the caller dispatches it through a Channel and feeds increments
// back through ApplyIncrement and Complete.
//
// # Generations
//
// Each issued request starts a new generation (epoch) of the conversation.
// Truncation and reset also advance it. Increments and completions carrying an
// older epoch are discarded, so a superseded stream can never write into a
// rewritten log.
//
// # Collaborators
//
// Identity, catalog, key-value slot, navigation, history, clipboard, share and
// notice sinks are interfaces (see ports.go). All are optional; missing ones
// are replaced with no-op implementations.
//
// # Usage
//
//	mgr := session.NewManager(session.Options{KV: kv, Notifier: toasts})
//	if req := mgr.Submit("build a pricing page"); req != nil {
//	    go channel.Stream(ctx, *req, func(inc model.Increment) { send(inc, req.Epoch) })
//	}
//
// The Manager is not safe for concurrent use. In the TUI it lives inside the
// bubbletea model and is only touched from Update.
package session
