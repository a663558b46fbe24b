// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// BACKEND EVENTS
// =============================================================================

// EventType identifies a backend stream event.
type EventType int

const (
	// EventDelta carries an incremental slice of assistant output.
	EventDelta EventType = iota

	// EventComplete is the terminal success event: the stream finished
	// and any follow-up suggestions are attached.
	EventComplete

	// EventCancelled is the terminal cancellation event. Content that
	// arrived before it is still committed as a partial message.
	EventCancelled
)

// Event is one asynchronous backend event, routed by correlation
// token. A terminal event (Complete or Cancelled) arrives at most once
// per accepted request from a well-behaved backend; the accumulator
// additionally treats duplicates as no-ops since exactly-once delivery
// is not guaranteed by contract.
type Event struct {
	Type  EventType
	Token string // correlation token of the originating request

	// Text is the delta payload (EventDelta only).
	Text string

	// FinalContent is the backend's view of the full response
	// (EventComplete only). The committed message uses the
	// accumulator's own buffer; this field is informational.
	FinalContent string

	// FollowUps are suggestion candidates attached to completion.
	FollowUps []model.FollowUpSuggestion

	// TokensPerSec is the backend-reported generation rate
	// (EventComplete only, 0 when unknown).
	TokensPerSec float64

	// Err records a stream-level failure. The event is still terminal:
	// accumulated content is committed as a partial message and the
	// error is surfaced on the session.
	Err error
}

// =============================================================================
// SUBSCRIPTION
// =============================================================================

// Subscription binds one generation attempt's event stream to a
// session's accumulator. It replaces ad hoc listener registration with
// a scoped object whose release is guaranteed: closing the
// subscription stops forwarding, and forwarding stops itself when the
// stream ends. Close is idempotent and safe from any goroutine.
type Subscription struct {
	once sync.Once
	done chan struct{}
}

func newSubscription() *Subscription {
	return &Subscription{done: make(chan struct{})}
}

// Close releases the subscription. Events still in flight after Close
// are dropped; the accumulator's idempotent finalization makes a
// dropped duplicate terminal harmless.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// Closed reports whether the subscription has been released.
func (s *Subscription) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// forward pumps events into the accumulator until the stream closes or
// the subscription is released. onEvent, if non-nil, runs after each
// consumed event (UI refresh hook).
func (s *Subscription) forward(events <-chan Event, acc *StreamAccumulator, onEvent func()) {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			acc.Consume(ev)
			if onEvent != nil {
				onEvent()
			}
		}
	}
}
