// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is one open chat: a persistent chat identity (possibly not
// yet created), the model serving it, and the exclusively-owned message
// store and stream accumulator. Sessions are created through a Manager
// and driven by a Controller; nothing is shared between sessions except
// the process-wide collaborators.
type Session struct {
	mu sync.Mutex

	// chat is nil until the lazy first-send creation (or eager
	// creation) has run. Once set it never changes.
	chat      *model.Chat
	modelName string

	store *MessageStore
	acc   *StreamAccumulator

	mode   BehaviorMode
	params model.GenerationParams

	inFlight  bool
	cancelMgr *cancelManager
	sub       *Subscription

	followUps []model.FollowUpSuggestion
	lastErr   error

	// draft holds user text restored to the input buffer after an
	// aborted send (augmentation failure).
	draft string

	// onUpdate, if set, runs after every consumed stream event and
	// after finalization. UI refresh hook; must be safe to call from
	// any goroutine.
	onUpdate func()
}

// newSession wires a session around its exclusively-owned store and
// accumulator. pins backs confirm-then-flip pin toggles.
func newSession(modelName string, params model.GenerationParams, pins PinBackend) *Session {
	store := NewMessageStore(pins)
	return &Session{
		modelName: modelName,
		store:     store,
		acc:       NewStreamAccumulator(store),
		params:    params,
		cancelMgr: newCancelManager(),
	}
}

// SetOnUpdate installs the UI refresh hook.
func (s *Session) SetOnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// ChatID returns the persistent chat ID, or "" before creation.
func (s *Session) ChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		return ""
	}
	return s.chat.ID
}

// Title returns the chat title, or "" before creation.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		return ""
	}
	return s.chat.Title
}

// ModelName returns the model serving this session.
func (s *Session) ModelName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelName
}

// SetModel switches the model for subsequent sends. An in-flight
// generation keeps the model it started with.
func (s *Session) SetModel(name string) {
	s.mu.Lock()
	s.modelName = name
	s.mu.Unlock()
	s.notify()
}

// Store returns the session's message store.
func (s *Session) Store() *MessageStore {
	return s.store
}

// Messages returns a snapshot of the committed message log.
func (s *Session) Messages() []*model.Message {
	return s.store.Messages()
}

// Partial returns the in-progress assistant output for rendering.
func (s *Session) Partial() string {
	return s.acc.Partial()
}

// TokenRate returns the tokens/sec of the last completed generation,
// or 0 when none is known.
func (s *Session) TokenRate() float64 {
	return s.acc.TokenRate()
}

// InFlight reports whether a generation is in progress.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Mode returns the active behavior mode.
func (s *Session) Mode() BehaviorMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the behavior mode. Takes effect on the next send;
// an in-flight generation keeps the mode it started with.
func (s *Session) SetMode(m BehaviorMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// Params returns the session's generation parameters.
func (s *Session) Params() model.GenerationParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the generation parameters, clamped to their valid
// ranges. An in-flight generation keeps the parameters it started with.
func (s *Session) SetParams(p model.GenerationParams) {
	p.Clamp()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}

// FollowUps returns the suggestions surfaced by the last completion.
func (s *Session) FollowUps() []model.FollowUpSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FollowUpSuggestion, len(s.followUps))
	copy(out, s.followUps)
	return out
}

// ClearFollowUps discards current suggestions. Called when the user
// starts typing new input.
func (s *Session) ClearFollowUps() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followUps = nil
}

// Err returns the session's error state, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearErr resets the session's error state.
func (s *Session) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// TakeDraft returns and clears the restored input draft left behind by
// an aborted send.
func (s *Session) TakeDraft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	s.draft = ""
	return d
}

// notify invokes the UI refresh hook outside s.mu.
func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// teardown releases the session's stream resources: the active
// subscription stops forwarding, any pending cancel fires, and the
// accumulator drops uncommitted output.
func (s *Session) teardown() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.inFlight = false
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	s.cancelMgr.cancel()
	s.acc.Reset()
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager binds chat identities to sessions. It owns session creation,
// opening, switching, and teardown; persistence stays behind the
// ChatStore collaborator.
type Manager struct {
	mu       sync.Mutex
	store    ChatStore
	defaults model.GenerationParams

	sessions []*Session
	active   int
}

// NewManager creates a session manager. defaults seed each new
// session's generation parameters (copied, not shared).
func NewManager(store ChatStore, defaults model.GenerationParams) *Manager {
	defaults.Clamp()
	return &Manager{
		store:    store,
		defaults: defaults,
		active:   -1,
	}
}

// SetDefaults replaces the seed parameters for sessions created from
// now on. Existing sessions keep the parameters they were created
// with.
func (m *Manager) SetDefaults(defaults model.GenerationParams) {
	defaults.Clamp()
	m.mu.Lock()
	m.defaults = defaults
	m.mu.Unlock()
}

// CreateNew opens a fresh session with no backing chat yet. The chat
// row is created lazily on first send, titled from the first user
// message.
func (m *Manager) CreateNew(modelName string) *Session {
	s := newSession(modelName, m.defaultParams(), m.store)
	m.attach(s)
	return s
}

// CreateNewEager opens a fresh session and creates its chat row
// immediately, for the explicit "start new chat" path.
func (m *Manager) CreateNewEager(ctx context.Context, modelName string) (*Session, error) {
	chat, err := m.store.CreateChat(ctx, "New chat", modelName)
	if err != nil {
		return nil, &Error{Kind: ErrKindStorage, Message: "create chat", Cause: err}
	}
	s := newSession(modelName, m.defaultParams(), m.store)
	s.chat = chat
	m.attach(s)
	return s, nil
}

// OpenExisting opens a session over a persisted chat, loading its
// history wholesale. Any accumulator state is reset: no generation can
// be in flight for a chat that was not open in this process.
func (m *Manager) OpenExisting(ctx context.Context, chat *model.Chat) (*Session, error) {
	history, err := m.store.ChatMessages(ctx, chat.ID)
	if err != nil {
		return nil, &Error{Kind: ErrKindStorage, Message: "load history", Cause: err}
	}
	s := newSession(chat.Model, m.defaultParams(), m.store)
	s.chat = chat
	s.store.ReplaceAll(history)
	s.acc.Reset()
	m.attach(s)
	return s, nil
}

// ListChats returns the persisted chats, most recently updated first.
func (m *Manager) ListChats(ctx context.Context) ([]*model.Chat, error) {
	chats, err := m.store.ListChats(ctx)
	if err != nil {
		return nil, &Error{Kind: ErrKindStorage, Message: "list chats", Cause: err}
	}
	return chats, nil
}

// DeleteChat removes a persisted chat and closes any open session
// bound to it.
func (m *Manager) DeleteChat(ctx context.Context, chatID string) error {
	if err := m.store.DeleteChat(ctx, chatID); err != nil {
		return &Error{Kind: ErrKindStorage, Message: "delete chat", Cause: err}
	}
	m.mu.Lock()
	var bound *Session
	for _, s := range m.sessions {
		if s.ChatID() == chatID {
			bound = s
			break
		}
	}
	m.mu.Unlock()
	if bound != nil {
		m.Close(bound)
	}
	return nil
}

// Sessions returns the open sessions in tab order.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Active returns the active session, or nil when none is open.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active < 0 || m.active >= len(m.sessions) {
		return nil
	}
	return m.sessions[m.active]
}

// Switch makes the session at tab index i active. Out-of-range indexes
// are ignored. Switching never disturbs other sessions: their streams
// keep running in the background.
func (m *Manager) Switch(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.sessions) {
		m.active = i
	}
}

// Close tears down a session and removes it from the tab list.
func (m *Manager) Close(s *Session) {
	s.teardown()

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, open := range m.sessions {
		if open == s {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			if m.active >= len(m.sessions) {
				m.active = len(m.sessions) - 1
			}
			return
		}
	}
}

func (m *Manager) attach(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
	m.active = len(m.sessions) - 1
}

func (m *Manager) defaultParams() model.GenerationParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaults
}
