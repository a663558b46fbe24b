// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/cortex-tui/internal/chat"
	"github.com/jeranaias/cortex-tui/internal/config"
)

// chromeHeight is the number of terminal rows used by the header,
// input area, and status bar around the viewport.
const chromeHeight = 4

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.input.Width = max(msg.Width-6, 10)
		m.help.Width = msg.Width
		m.markdown = newMarkdownRenderer(m.theme.GlamourStyle(), max(msg.Width-4, 20))
		m.ready = true
		m.refreshViewport(true)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionUpdatedMsg:
		m.refreshViewport(false)
		return m, listenForUpdates(m.updates)

	case sendFinishedMsg:
		if msg.err != nil {
			// An aborted augmentation restores the draft so the user
			// can retry or adjust it.
			if s := m.active(); s != nil {
				if draft := s.TakeDraft(); draft != "" {
					m.input.SetValue(draft)
					m.input.CursorEnd()
				}
			}
		}
		m.refreshViewport(true)
		return m, nil

	case chatsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "could not list chats: " + msg.err.Error()
			return m, nil
		}
		m.overlay = overlayChats
		m.chatList = msg.chats
		m.listIndex = 0
		return m, nil

	case modelsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = "could not list models: " + msg.err.Error()
			return m, nil
		}
		m.overlay = overlayModels
		m.modelList = msg.models
		m.listIndex = 0
		return m, nil

	case sessionOpenedMsg:
		if msg.err != nil {
			m.statusMsg = "could not open chat: " + msg.err.Error()
			return m, nil
		}
		m.overlay = overlayNone
		if s := m.active(); s != nil {
			m.attachSession(s)
		}
		m.selected = -1
		m.refreshViewport(true)
		return m, nil

	case chatDeletedMsg:
		if msg.err != nil {
			m.statusMsg = "could not delete chat: " + msg.err.Error()
			return m, nil
		}
		m.ensureSession()
		m.refreshViewport(true)
		return m, loadChatsCmd(m.manager)

	case pinToggledMsg:
		if msg.err != nil {
			m.statusMsg = "pin failed: " + msg.err.Error()
		}
		m.refreshViewport(false)
		return m, nil

	case exportFinishedMsg:
		if msg.err != nil {
			m.statusMsg = "export failed: " + msg.err.Error()
		} else {
			m.statusMsg = "exported to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey routes a key press by UI state.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay != overlayNone {
		return m.handleOverlayKey(msg)
	}

	s := m.active()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		switch {
		case s != nil && s.InFlight():
			m.controller.Cancel(s)
		case m.selected >= 0:
			m.selected = -1
			m.refreshViewport(false)
		default:
			if s != nil {
				s.ClearErr()
			}
			m.statusMsg = ""
			m.refreshViewport(false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if s == nil || s.InFlight() {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.selected = -1
		m.statusMsg = ""
		return m, sendCmd(m.controller, s, text)

	case key.Matches(msg, m.keys.NewChat):
		fresh := m.manager.CreateNew(m.tabModel())
		m.attachSession(fresh)
		m.selected = -1
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keys.CloseChat):
		if s != nil {
			m.manager.Close(s)
		}
		m.ensureSession()
		m.selected = -1
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
		return m, nil

	case key.Matches(msg, m.keys.OpenChats):
		return m, loadChatsCmd(m.manager)

	case key.Matches(msg, m.keys.PickModel):
		return m, loadModelsCmd(m.client)

	case key.Matches(msg, m.keys.CycleMode):
		if s != nil {
			s.SetMode(nextMode(s.Mode()))
			m.refreshViewport(false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Export):
		if s == nil || s.ChatID() == "" {
			m.statusMsg = "nothing to export yet"
			return m, nil
		}
		dir, err := config.Dir()
		if err != nil {
			m.statusMsg = "export failed: " + err.Error()
			return m, nil
		}
		path := filepath.Join(dir, "exports", s.ChatID()+".json")
		return m, exportChatCmd(m.store, s.ChatID(), path)

	case key.Matches(msg, m.keys.SelectPrev):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.SelectNext):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.TogglePin):
		if s == nil || m.selected < 0 {
			m.statusMsg = "select a message first (alt+up/alt+down)"
			return m, nil
		}
		msgs := s.Messages()
		if m.selected >= len(msgs) {
			return m, nil
		}
		return m, togglePinCmd(m.controller, s, msgs[m.selected].ID)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		// The expanded help takes three extra rows from the viewport.
		if m.help.ShowAll {
			m.viewport.Height = max(m.height-chromeHeight-3, 3)
		} else {
			m.viewport.Height = max(m.height-chromeHeight, 3)
		}
		return m, nil

	case key.Matches(msg, m.keys.FollowUp1):
		m.useFollowUp(0)
		return m, nil
	case key.Matches(msg, m.keys.FollowUp2):
		m.useFollowUp(1)
		return m, nil
	case key.Matches(msg, m.keys.FollowUp3):
		m.useFollowUp(2)
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleOverlayKey drives the chat and model pickers.
func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	length := 0
	switch m.overlay {
	case overlayChats:
		length = len(m.chatList)
	case overlayModels:
		length = len(m.modelList)
	}

	switch msg.String() {
	case "esc", "q":
		m.overlay = overlayNone
		return m, nil

	case "up", "k":
		if m.listIndex > 0 {
			m.listIndex--
		}
		return m, nil

	case "down", "j":
		if m.listIndex < length-1 {
			m.listIndex++
		}
		return m, nil

	case "d":
		if m.overlay == overlayChats && m.listIndex < len(m.chatList) {
			return m, deleteChatCmd(m.manager, m.chatList[m.listIndex].ID)
		}
		return m, nil

	case "n":
		if m.overlay == overlayChats {
			return m, newChatEagerCmd(m.manager, m.tabModel())
		}
		return m, nil

	case "enter":
		switch m.overlay {
		case overlayChats:
			if m.listIndex >= len(m.chatList) {
				return m, nil
			}
			picked := m.chatList[m.listIndex]
			// A chat already open in a tab is switched to, not
			// reopened.
			for i, s := range m.manager.Sessions() {
				if s.ChatID() == picked.ID {
					m.manager.Switch(i)
					m.overlay = overlayNone
					m.refreshViewport(true)
					return m, nil
				}
			}
			return m, openChatCmd(m.manager, picked)

		case overlayModels:
			if m.listIndex >= len(m.modelList) {
				return m, nil
			}
			name := m.modelList[m.listIndex].Name
			if s := m.active(); s != nil {
				s.SetModel(name)
			}
			m.fallbackModel = name
			m.overlay = overlayNone
			m.refreshViewport(false)
			return m, nil
		}
	}
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// switchTab moves the active tab by delta with wrap-around.
func (m *Model) switchTab(delta int) {
	sessions := m.manager.Sessions()
	if len(sessions) < 2 {
		return
	}
	current := 0
	active := m.manager.Active()
	for i, s := range sessions {
		if s == active {
			current = i
			break
		}
	}
	next := (current + delta + len(sessions)) % len(sessions)
	m.manager.Switch(next)
	m.selected = -1
	m.refreshViewport(true)
}

// moveSelection moves the pin-selection cursor over committed
// messages.
func (m *Model) moveSelection(delta int) {
	s := m.active()
	if s == nil {
		return
	}
	count := len(s.Messages())
	if count == 0 {
		return
	}
	if m.selected < 0 {
		// Start from the newest message.
		m.selected = count - 1
	} else {
		m.selected += delta
		if m.selected < 0 {
			m.selected = 0
		}
		if m.selected >= count {
			m.selected = count - 1
		}
	}
	m.refreshViewport(false)
}

// useFollowUp copies a suggested follow-up into the input.
func (m *Model) useFollowUp(i int) {
	s := m.active()
	if s == nil {
		return
	}
	fups := s.FollowUps()
	if i >= len(fups) {
		return
	}
	m.input.SetValue(fups[i].Text)
	m.input.CursorEnd()
}

// tabModel picks the model for a newly opened tab.
func (m *Model) tabModel() string {
	if s := m.active(); s != nil && s.ModelName() != "" {
		return s.ModelName()
	}
	return m.fallbackModel
}

// nextMode cycles chat -> internet -> academic -> chat.
func nextMode(mode core.BehaviorMode) core.BehaviorMode {
	modes := core.AllModes()
	for i, candidate := range modes {
		if candidate == mode {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// refreshViewport re-renders the conversation. When follow is set, or
// the user was already reading the tail, the viewport sticks to the
// bottom so streaming output stays visible.
func (m *Model) refreshViewport(follow bool) {
	if !m.ready {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderConversation())
	if follow || wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
