// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// CANCEL FUNCTION MANAGEMENT
// =============================================================================

// cancelManager guards the in-flight generation's cancel function.
// Held as a pointer so session copies never copy the mutex.
type cancelManager struct {
	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores the cancel function for the current generation.
func (cm *cancelManager) set(fn context.CancelFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.cancelFunc = fn
}

// cancel fires and drops the stored cancel function, so contexts never
// leak. Safe to call repeatedly or with nothing in flight; serves both
// user-initiated cancellation and post-stream cleanup.
func (cm *cancelManager) cancel() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancelFunc != nil {
		cm.cancelFunc()
		cm.cancelFunc = nil
	}
}

// =============================================================================
// GENERATION CONTROLLER
// =============================================================================

// persistTimeout bounds the background save of a finalized assistant
// message.
const persistTimeout = 10 * time.Second

// titleRuneLimit caps lazily-derived chat titles.
const titleRuneLimit = 50

// Controller orchestrates one chat completion end-to-end: lazy chat
// creation, optional retrieval augmentation, outbound message
// assembly, the backend call, and stream finalization. One Controller
// serves every session; all per-send state lives on the session.
type Controller struct {
	gen   Generator
	store ChatStore
	aug   Augmenter
}

// NewController wires the controller's collaborators. aug may be nil
// when no retrieval backend is configured; retrieval modes then fail
// as search-unavailable.
func NewController(gen Generator, store ChatStore, aug Augmenter) *Controller {
	return &Controller{gen: gen, store: store, aug: aug}
}

// Send runs one generation for the session's current mode and
// parameters. The returned error is also recorded on the session
// except for validation errors, which leave session state untouched.
//
// Sequence: validate; mark in-flight; create the chat row if this is
// the session's first send; augment when the mode asks for it
// (augmentation failure aborts the send and restores the draft);
// persist then append the user message; dispatch to the backend; hand
// the event stream to the session's accumulator.
func (c *Controller) Send(ctx context.Context, s *Session, userText string) error {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return &Error{Kind: ErrKindValidation, Message: "empty input"}
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return &Error{Kind: ErrKindValidation, Message: "generation already in progress"}
	}
	// In-flight flips on before any slow work so interleaved sends
	// bounce off immediately.
	s.inFlight = true
	s.followUps = nil
	s.lastErr = nil
	mode := s.mode
	params := s.params
	chat := s.chat
	s.mu.Unlock()

	fail := func(err error) error {
		s.mu.Lock()
		s.inFlight = false
		s.lastErr = err
		s.mu.Unlock()
		s.notify()
		return err
	}

	// First send on a lazily-created session: the chat row is created
	// now, titled from the user's text.
	if chat == nil {
		created, err := c.store.CreateChat(ctx, model.DeriveTitle(userText, titleRuneLimit), s.modelName)
		if err != nil {
			return fail(&Error{Kind: ErrKindStorage, Message: "create chat", Cause: err})
		}
		s.mu.Lock()
		s.chat = created
		s.mu.Unlock()
		chat = created
	}

	// Retrieval augmentation is all-or-nothing: a failed search aborts
	// the send instead of quietly answering without sources. The typed
	// text goes back to the input buffer.
	var contextPrompt string
	if mode.UsesRetrieval() {
		if c.aug == nil {
			s.mu.Lock()
			s.draft = userText
			s.mu.Unlock()
			return fail(&Error{Kind: ErrKindSearchUnavailable, Message: "no search backend configured"})
		}
		augmented, err := c.aug.Augment(ctx, userText, mode.SearchMode())
		if err != nil {
			s.mu.Lock()
			s.draft = userText
			s.mu.Unlock()
			return fail(&Error{Kind: ErrKindSearchUnavailable, Message: "search failed", Cause: err})
		}
		contextPrompt = augmented
	}

	// Persist before the in-memory append: if the save fails nothing
	// renders, so store and screen never disagree.
	userMsg := model.NewUserMessage(userText)
	userMsg.SystemPromptType = mode.PromptType()
	if err := c.store.AddMessage(ctx, chat.ID, userMsg); err != nil {
		return fail(&Error{Kind: ErrKindStorage, Message: "save message", Cause: err})
	}
	s.store.Append(userMsg)
	s.notify()

	outbound := buildOutbound(mode, s.store.Messages(), contextPrompt)
	token := uuid.NewString()
	req := GenerationRequest{
		Model:          s.modelName,
		Messages:       outbound,
		Params:         params,
		ChatID:         chat.ID,
		Token:          token,
		SuggestionKind: mode.SuggestionKind(),
	}

	// The generation context is independent of the send context: the
	// stream outlives this call and ends only on completion or an
	// explicit Cancel.
	genCtx, cancel := context.WithCancel(context.Background())
	s.cancelMgr.set(cancel)

	events, err := c.gen.Generate(genCtx, req)
	if err != nil {
		s.cancelMgr.cancel()
		return fail(&Error{Kind: ErrKindBackendUnavailable, Message: "backend rejected request", Cause: err})
	}

	s.acc.Begin(token, mode.PromptType(), func(committed *model.Message, cancelled bool, followUps []model.FollowUpSuggestion, streamErr error) {
		c.finalize(s, chat.ID, committed, cancelled, followUps, streamErr)
	})

	sub := newSubscription()
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	go sub.forward(events, s.acc, s.notify)

	return nil
}

// Cancel requests cooperative cancellation of the session's in-flight
// generation. No-op when nothing is in flight. Output accumulated so
// far is committed when the terminal event lands.
func (c *Controller) Cancel(s *Session) {
	s.mu.Lock()
	inFlight := s.inFlight
	s.mu.Unlock()
	if inFlight {
		s.cancelMgr.cancel()
	}
}

// TogglePin flips a message's pin flag through the session's store.
func (c *Controller) TogglePin(ctx context.Context, s *Session, messageID string) error {
	return s.store.TogglePin(ctx, messageID)
}

// finalize is the accumulator's terminal callback: it persists the
// committed assistant message, surfaces follow-ups and stream errors,
// and releases in-flight state.
func (c *Controller) finalize(s *Session, chatID string, committed *model.Message, cancelled bool, followUps []model.FollowUpSuggestion, streamErr error) {
	var persistErr error
	if committed != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.store.AddMessage(ctx, chatID, committed); err != nil {
			persistErr = &Error{Kind: ErrKindStorage, Message: "save response", Cause: err}
		}
	}

	s.mu.Lock()
	s.inFlight = false
	s.sub = nil
	if !cancelled {
		s.followUps = followUps
	}
	switch {
	case streamErr != nil:
		s.lastErr = streamErr
	case persistErr != nil:
		s.lastErr = persistErr
	}
	s.mu.Unlock()

	s.cancelMgr.cancel()
	s.notify()
}

// buildOutbound assembles the backend message list: the mode's system
// prompt, the committed history (which already ends with the new user
// message), and the synthesized retrieval context when present. The
// context message is outbound-only; it is never committed to the
// session's store.
func buildOutbound(mode BehaviorMode, history []*model.Message, contextPrompt string) []model.Message {
	out := make([]model.Message, 0, len(history)+2)
	out = append(out, *model.NewSystemMessage(mode.SystemPrompt()))
	for _, msg := range history {
		out = append(out, *msg)
	}
	if contextPrompt != "" {
		out = append(out, *model.NewSystemMessage(contextPrompt))
	}
	return out
}
