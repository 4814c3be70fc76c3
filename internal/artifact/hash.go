// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package artifact

import (
	"strconv"

	"github.com/jeranaias/zen-tui/internal/util"
)

const hashEdge = 64

// ContentHash is a cheap change key for reply text: rune length plus the first
// and last 64 runes. Collisions only mean a dismissed dock stays closed.
func ContentHash(text string) string {
	return strconv.Itoa(util.RuneLen(text)) + ":" +
		util.FirstRunes(text, hashEdge) + ":" +
		util.LastRunes(text, hashEdge)
}
