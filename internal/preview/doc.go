// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package preview serves the artifact dock's current document over HTTP so
// it can be viewed in a real browser while the terminal shows the code tab.
//
// Endpoints:
//   - GET /        - current sandbox document with a live-reload script
//   - GET /raw     - current sandbox document as built
//   - GET /ws      - websocket pushing {"type":"reload","version":N}
//   - GET /health  - liveness and current version
//
// Documents are served under a sandbox Content-Security-Policy, the terminal
// counterpart of an isolated iframe. Reload pushes are coalesced and rate
// limited so a streaming answer does not thrash the browser.
package preview
