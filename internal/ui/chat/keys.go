// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Submit key.Binding
	Cancel key.Binding
	Quit   key.Binding

	NewChat   key.Binding
	CloseChat key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding

	OpenChats  key.Binding
	PickModel  key.Binding
	CycleMode  key.Binding
	Export     key.Binding

	SelectPrev key.Binding
	SelectNext key.Binding
	TogglePin  key.Binding

	FollowUp1 key.Binding
	FollowUp2 key.Binding
	FollowUp3 key.Binding

	Help key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat
// interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel generation"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "ctrl+c"),
			key.WithHelp("C-q", "quit"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		CloseChat: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "close tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous tab"),
		),
		OpenChats: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "open chat"),
		),
		PickModel: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "switch model"),
		),
		CycleMode: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "cycle mode"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export chat"),
		),
		SelectPrev: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("M-up", "select previous message"),
		),
		SelectNext: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("M-down", "select next message"),
		),
		TogglePin: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "pin/unpin selected"),
		),
		FollowUp1: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "use follow-up 1"),
		),
		FollowUp2: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "use follow-up 2"),
		),
		FollowUp3: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "use follow-up 3"),
		),
		Help: key.NewBinding(
			key.WithKeys("alt+h"),
			key.WithHelp("M-h", "toggle help"),
		),
	}
}

// ShortHelp returns the most commonly used shortcuts for the status
// bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.NewChat, k.CycleMode, k.Help, k.Quit}
}

// FullHelp groups all bindings for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Submit, k.Cancel, k.NewChat, k.CloseChat},
		{k.NextTab, k.PrevTab, k.OpenChats, k.PickModel},
		{k.CycleMode, k.Export, k.TogglePin, k.Quit},
	}
}
