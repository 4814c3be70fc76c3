// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package host adapts the operating system to the session collaborator
// interfaces: system clipboard, URL and file opener, session location,
// share target and user identity.
package host
