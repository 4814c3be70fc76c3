// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the submission channels that stream answers into
// a chat session.
//
// Every transport implements session.Channel: it takes a Request snapshot and
// emits role-tagged increments until the stream ends. Transports:
//
//   - ChatAPI: the product's own /api/chat endpoint, data-stream protocol
//   - OpenAI: any OpenAI-compatible endpoint (OpenRouter by default)
//   - Gemini: Google Gemini through the genai SDK
//
// Router picks a transport from the provider prefix of the selected model.
//
// Transports never retry; a failed stream is reported once and the session
// decides what the user sees.
package backend
