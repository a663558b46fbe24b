// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/cortex-tui/internal/chat"
	"github.com/jeranaias/cortex-tui/internal/config"
	"github.com/jeranaias/cortex-tui/internal/model"
	"github.com/jeranaias/cortex-tui/internal/ollama"
	"github.com/jeranaias/cortex-tui/internal/storage"
	"github.com/jeranaias/cortex-tui/internal/ui/styles"
)

// =============================================================================
// OVERLAYS
// =============================================================================

// overlayKind selects which overlay, if any, covers the chat view.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayChats
	overlayModels
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the tabbed chat view.
type Model struct {
	theme *styles.Theme
	prefs config.UIConfig

	// Domain layer
	manager    *core.Manager
	controller *core.Controller
	client     *ollama.Client
	store      *storage.Store

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keys     KeyMap
	help     help.Model
	markdown *markdownRenderer

	// Dimensions
	width  int
	height int
	ready  bool

	// Session update bridge. Sessions signal here from stream
	// goroutines; listenForUpdates turns signals into messages.
	updates chan struct{}

	// Overlay state
	overlay   overlayKind
	chatList  []*model.Chat
	modelList []ollama.ModelInfo
	listIndex int

	// Message selection for pinning. -1 means no selection.
	selected int

	// Model used for tabs opened after the last one is closed.
	fallbackModel string

	// Transient status line content.
	statusMsg string
}

// New creates the chat view. The first tab is a lazily created session
// on the configured default model.
func New(cfg *config.Config, theme *styles.Theme, manager *core.Manager, controller *core.Controller, client *ollama.Client, store *storage.Store) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := Model{
		theme:         theme,
		prefs:         cfg.UI,
		manager:       manager,
		controller:    controller,
		client:        client,
		store:         store,
		viewport:      vp,
		input:         ti,
		spinner:       sp,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		markdown:      newMarkdownRenderer(theme.GlamourStyle(), 78),
		updates:       make(chan struct{}, 8),
		selected:      -1,
		fallbackModel: cfg.Ollama.Model,
	}

	s := manager.CreateNew(cfg.Ollama.Model)
	m.attachSession(s)
	return m
}

// attachSession wires a session's update hook into the Bubble Tea
// bridge. The send is non-blocking: a full channel already has a
// wake-up pending, which is all a render loop needs.
func (m *Model) attachSession(s *core.Session) {
	updates := m.updates
	s.SetOnUpdate(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
}

// Init starts the update listener, cursor blink, and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForUpdates(m.updates),
		textinput.Blink,
		m.spinner.Tick,
	)
}

// active returns the active session. The manager guarantees one exists
// while the view is alive.
func (m *Model) active() *core.Session {
	return m.manager.Active()
}

// ensureSession recreates a tab if the last one was closed.
func (m *Model) ensureSession() {
	if m.manager.Active() == nil {
		s := m.manager.CreateNew(m.fallbackModel)
		m.attachSession(s)
	}
}
