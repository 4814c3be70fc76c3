// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the zen terminal UI.

All colors are Lip Gloss AdaptiveColor values so the palette follows the
terminal background. The Theme struct detects terminal capabilities through
termenv and holds every composed style.

# Color System (colors.go)

  - Purple - assistant messages, selections, the dock border
  - Cyan - brand, user highlights, suggestion chips
  - Emerald - success notices
  - Amber - warnings, cost estimates
  - Rose - errors

# Theme System (theme.go)

	theme := styles.NewTheme("auto")
	theme.SetSize(width, height)
	if theme.GetLayoutMode() == styles.LayoutWide {
		// dock renders beside the conversation
	}
*/
package styles
