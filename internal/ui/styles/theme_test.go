// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_Modes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	dark := NewTheme(ThemeDark)
	require.NotNil(t, dark)
	assert.True(t, dark.IsDark)

	light := NewTheme(ThemeLight)
	assert.False(t, light.IsDark)
}

func TestProfileFromEnv_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.Ascii, ProfileFromEnv())
}

func TestGlamourStyle(t *testing.T) {
	tests := []struct {
		name    string
		profile termenv.Profile
		dark    bool
		want    string
	}{
		{"ascii", termenv.Ascii, true, "notty"},
		{"dark", termenv.TrueColor, true, "dark"},
		{"light", termenv.ANSI256, false, "light"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := &Theme{ColorProfile: tt.profile, IsDark: tt.dark}
			assert.Equal(t, tt.want, theme.GlamourStyle())
		})
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestBubbleWidth(t *testing.T) {
	theme := NewTheme(ThemeDark)

	theme.SetSize(100, 40)
	assert.Equal(t, 75, theme.BubbleWidth())

	theme.SetSize(10, 40)
	assert.Equal(t, 20, theme.BubbleWidth(), "minimum width applies")
}

func TestRenderStatusMessages(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	theme := NewTheme(ThemeDark)

	assert.Contains(t, theme.RenderSuccess("done"), "[OK] done")
	assert.Contains(t, theme.RenderError("failed"), "[X] failed")
	assert.Contains(t, theme.RenderWarning("slow"), "[!] slow")
}
