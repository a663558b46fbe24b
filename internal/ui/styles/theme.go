// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	Palette      Palette
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND TABS
	// ==========================================================================

	Header       lipgloss.Style
	HeaderBrand  lipgloss.Style
	Tab          lipgloss.Style
	TabActive    lipgloss.Style
	TabStreaming lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBody       lipgloss.Style
	AssistantBody  lipgloss.Style
	PinMarker      lipgloss.Style
	MessageMeta    lipgloss.Style
	SelectedMark   lipgloss.Style

	// ==========================================================================
	// STREAMING
	// ==========================================================================

	Spinner       lipgloss.Style
	StreamingText lipgloss.Style

	// ==========================================================================
	// FOLLOW-UP SUGGESTIONS
	// ==========================================================================

	FollowUpHeader lipgloss.Style
	FollowUpItem   lipgloss.Style

	// ==========================================================================
	// INPUT AREA
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR
	// ==========================================================================

	StatusBar    lipgloss.Style
	ModeChat     lipgloss.Style
	ModeInternet lipgloss.Style
	ModeAcademic lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	StatusNote   lipgloss.Style

	// ==========================================================================
	// ERRORS
	// ==========================================================================

	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style

	// ==========================================================================
	// LIST OVERLAYS (chat picker, model picker)
	// ==========================================================================

	OverlayBox       lipgloss.Style
	OverlayTitle     lipgloss.Style
	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListMeta         lipgloss.Style
}

// NewTheme builds a theme from the configured theme name. The name
// decides the palette; terminal capability detection only affects the
// color profile.
func NewTheme(name string) *Theme {
	t := &Theme{
		Palette:      PaletteByName(name),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles from the palette.
func (t *Theme) initStyles() {
	p := t.Palette

	// Header and tabs
	t.Header = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	t.Tab = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Foreground(p.TextInverse).
		Background(p.AccentAlt).
		Bold(true).
		Padding(0, 1)

	t.TabStreaming = lipgloss.NewStyle().
		Foreground(p.Warning).
		Padding(0, 1)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Accent)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.AccentAlt)

	t.UserBody = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		PaddingLeft(2)

	t.AssistantBody = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	t.PinMarker = lipgloss.NewStyle().
		Foreground(p.Warning).
		Bold(true)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	t.SelectedMark = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	// Streaming
	t.Spinner = lipgloss.NewStyle().
		Foreground(p.AccentAlt)

	t.StreamingText = lipgloss.NewStyle().
		Foreground(p.TextSecondary)

	// Follow-ups
	t.FollowUpHeader = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Bold(true)

	t.FollowUpItem = lipgloss.NewStyle().
		Foreground(p.Accent).
		PaddingLeft(2)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(p.SurfaceDim).
		Foreground(p.TextSecondary).
		Padding(0, 1)

	t.ModeChat = lipgloss.NewStyle().
		Foreground(p.Success).
		Bold(true)

	t.ModeInternet = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.ModeAcademic = lipgloss.NewStyle().
		Foreground(p.AccentAlt).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	t.StatusNote = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	// Errors
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Danger).
		Padding(0, 1)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(p.Danger).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	// List overlays
	t.OverlayBox = lipgloss.NewStyle().
		Background(p.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.AccentAlt).
		Padding(1, 2)

	t.OverlayTitle = lipgloss.NewStyle().
		Foreground(p.AccentAlt).
		Bold(true)

	t.ListItem = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		Padding(0, 1)

	t.ListItemSelected = lipgloss.NewStyle().
		Background(p.AccentAlt).
		Foreground(p.TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GlamourStyle returns the glamour style name matching the palette.
func (t *Theme) GlamourStyle() string {
	if t.Palette.Name == "light" {
		return "light"
	}
	return "dark"
}
