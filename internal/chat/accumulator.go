// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// ACCUMULATOR STATE
// =============================================================================

// AccState is the stream accumulator's state.
type AccState int

const (
	StateIdle AccState = iota
	StateStreaming
	StateCompleted
	StateCancelled
)

// String returns the state name.
func (s AccState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FinalizeFunc runs after a terminal transition. committed is the
// assistant message appended to the store, or nil when the buffer was
// empty. cancelled distinguishes the Cancelled path from Completed.
// streamErr carries a stream-level failure, if any.
type FinalizeFunc func(committed *model.Message, cancelled bool, followUps []model.FollowUpSuggestion, streamErr error)

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator buffers delta events for one in-flight generation
// and commits the result into the owning session's MessageStore.
//
// State machine: Idle -> Streaming on Begin; Streaming -> Streaming on
// each delta (appended verbatim, in arrival order; the backend is the
// sole source of ordering truth); Streaming -> Completed or Cancelled
// on the terminal event. Terminal states are transient: the next Begin
// resets to Streaming.
//
// The accumulator only consumes events carrying its active correlation
// token. Events for other tokens are ignored, and a second terminal
// event for an already-finalized token is a no-op (the transport does
// not guarantee exactly-once delivery).
type StreamAccumulator struct {
	mu    sync.Mutex
	state AccState
	token string
	buf   strings.Builder

	store      *MessageStore
	promptType string
	onFinalize FinalizeFunc

	// lastFinalized is the most recent token whose terminal event was
	// handled, so a duplicate terminal stays a no-op even after the
	// state moved on. One token suffices: anything older fails the
	// active-token check.
	lastFinalized string

	// lastRate is the backend-reported tokens/sec of the most recently
	// completed generation. Display only.
	lastRate float64
}

// NewStreamAccumulator creates an accumulator committing into store.
func NewStreamAccumulator(store *MessageStore) *StreamAccumulator {
	return &StreamAccumulator{store: store}
}

// Begin transitions Idle -> Streaming for a new generation attempt.
// The buffer is reset; promptType tags the committed message's
// provenance; onFinalize runs once on the terminal transition.
func (a *StreamAccumulator) Begin(token, promptType string, onFinalize FinalizeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateStreaming
	a.token = token
	a.buf.Reset()
	a.promptType = promptType
	a.onFinalize = onFinalize
}

// State returns the current state.
func (a *StreamAccumulator) State() AccState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Token returns the active correlation token, or "" when idle.
func (a *StreamAccumulator) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateStreaming {
		return ""
	}
	return a.token
}

// Partial returns a snapshot of the in-progress buffer for rendering.
func (a *StreamAccumulator) Partial() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.String()
}

// TokenRate returns the tokens/sec reported for the last completed
// generation, or 0 when none is known.
func (a *StreamAccumulator) TokenRate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRate
}

// InProgress reports whether a stream is being accumulated.
func (a *StreamAccumulator) InProgress() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == StateStreaming
}

// Reset discards any in-progress buffer and returns to Idle without
// committing. Used on session teardown and history reload, where no
// generation can legitimately be in flight for the session anymore.
func (a *StreamAccumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateIdle
	a.token = ""
	a.buf.Reset()
	a.onFinalize = nil
}

// Consume applies one backend event. Events for foreign or
// already-finalized tokens are ignored.
func (a *StreamAccumulator) Consume(ev Event) {
	a.mu.Lock()

	if ev.Token != "" && ev.Token == a.lastFinalized {
		a.mu.Unlock()
		return
	}
	if a.state != StateStreaming || ev.Token != a.token {
		a.mu.Unlock()
		return
	}

	switch ev.Type {
	case EventDelta:
		// Deltas are trusted as delivered: no drop, no reorder, no
		// dedup.
		a.buf.WriteString(ev.Text)
		a.mu.Unlock()

	case EventComplete:
		a.finalizeLocked(ev, false)

	case EventCancelled:
		a.finalizeLocked(ev, true)

	default:
		a.mu.Unlock()
	}
}

// finalizeLocked handles the terminal transition. Caller holds a.mu;
// the lock is released before onFinalize runs so the callback may take
// session locks freely.
func (a *StreamAccumulator) finalizeLocked(ev Event, cancelled bool) {
	a.lastFinalized = ev.Token
	if ev.TokensPerSec > 0 {
		a.lastRate = ev.TokensPerSec
	}
	if cancelled {
		a.state = StateCancelled
	} else {
		a.state = StateCompleted
	}

	var committed *model.Message
	if a.buf.Len() > 0 {
		// Cancellation does not discard partial output: the committed
		// message is an ordinary assistant message either way.
		committed = model.NewAssistantMessage(a.buf.String())
		committed.SystemPromptType = a.promptType
		a.store.Append(committed)
	}
	a.buf.Reset()
	a.token = ""

	onFinalize := a.onFinalize
	a.onFinalize = nil
	a.mu.Unlock()

	if onFinalize != nil {
		onFinalize(committed, cancelled, ev.FollowUps, ev.Err)
	}
}
