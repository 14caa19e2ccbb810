// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the prepchat TUI.

All colors use Lip Gloss AdaptiveColor so they follow the terminal's light or
dark background. NewTheme resolves the color profile once: NO_COLOR selects
the termenv Ascii profile, which strips every color while keeping borders and
layout.

# Usage

	theme := styles.NewTheme(styles.ThemeAuto)
	bubble := theme.AssistantBubble.Render("Hello")

GlamourStyle returns the glamour standard style that matches the resolved
profile and background, so markdown rendering agrees with the rest of the UI.
*/
package styles
