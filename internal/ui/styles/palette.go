// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTES
// =============================================================================

// Palette is the named color set a Theme is built from.
type Palette struct {
	Name string

	// Accents
	Accent    lipgloss.Color // brand, active tab, user prompt
	AccentAlt lipgloss.Color // assistant accents, selections
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color

	// Surfaces
	Surface    lipgloss.Color
	SurfaceDim lipgloss.Color
	Overlay    lipgloss.Color

	// Text
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextInverse   lipgloss.Color
}

// DarkPalette returns the default dark color set.
func DarkPalette() Palette {
	return Palette{
		Name:          "dark",
		Accent:        lipgloss.Color("#22D3EE"),
		AccentAlt:     lipgloss.Color("#A78BFA"),
		Success:       lipgloss.Color("#34D399"),
		Warning:       lipgloss.Color("#FBBF24"),
		Danger:        lipgloss.Color("#FB7185"),
		Surface:       lipgloss.Color("#1E1E2E"),
		SurfaceDim:    lipgloss.Color("#181825"),
		Overlay:       lipgloss.Color("#313244"),
		TextPrimary:   lipgloss.Color("#CDD6F4"),
		TextSecondary: lipgloss.Color("#A6ADC8"),
		TextMuted:     lipgloss.Color("#6C7086"),
		TextInverse:   lipgloss.Color("#1E1E2E"),
	}
}

// LightPalette returns the light color set.
func LightPalette() Palette {
	return Palette{
		Name:          "light",
		Accent:        lipgloss.Color("#0891B2"),
		AccentAlt:     lipgloss.Color("#7C3AED"),
		Success:       lipgloss.Color("#059669"),
		Warning:       lipgloss.Color("#D97706"),
		Danger:        lipgloss.Color("#E11D48"),
		Surface:       lipgloss.Color("#FFFFFF"),
		SurfaceDim:    lipgloss.Color("#F5F5F5"),
		Overlay:       lipgloss.Color("#E5E5E5"),
		TextPrimary:   lipgloss.Color("#1F2937"),
		TextSecondary: lipgloss.Color("#6B7280"),
		TextMuted:     lipgloss.Color("#9CA3AF"),
		TextInverse:   lipgloss.Color("#FFFFFF"),
	}
}

// PaletteByName resolves a configured theme name. Unknown names fall
// back to dark.
func PaletteByName(name string) Palette {
	if name == "light" {
		return LightPalette()
	}
	return DarkPalette()
}
