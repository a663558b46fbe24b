// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// PIN BACKEND
// =============================================================================

// PinBackend is the narrow slice of the persistence contract the
// message store needs: confirming a pin toggle remotely before the
// local flag flips.
type PinBackend interface {
	TogglePin(ctx context.Context, messageID string) (bool, error)
}

// =============================================================================
// MESSAGE STORE
// =============================================================================

// MessageStore is the ordered message log for one chat session.
// Append-only: messages are never reordered or removed, except for the
// wholesale replacement that happens when history is loaded on session
// open. Only the pin flag mutates after append.
type MessageStore struct {
	mu       sync.RWMutex
	messages []*model.Message
	pins     PinBackend
}

// NewMessageStore creates an empty store. pins may be nil for stores
// that never toggle pins (tests, transient sessions).
func NewMessageStore(pins PinBackend) *MessageStore {
	return &MessageStore{pins: pins}
}

// Append adds a message to the end of the log.
func (s *MessageStore) Append(msg *model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// ReplaceAll replaces the in-memory log wholesale. Used only when
// loading session history from the persistent store.
func (s *MessageStore) ReplaceAll(msgs []*model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = make([]*model.Message, len(msgs))
	copy(s.messages, msgs)
}

// Messages returns a snapshot of the log in order.
func (s *MessageStore) Messages() []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages.
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Get returns the message with the given ID, or nil.
func (s *MessageStore) Get(id string) *model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, msg := range s.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Last returns the most recent message, or nil if the log is empty.
func (s *MessageStore) Last() *model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return nil
	}
	return s.messages[len(s.messages)-1]
}

// Pinned returns the pinned messages in log order. Recomputed on
// demand; no caching.
func (s *MessageStore) Pinned() []*model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pinned []*model.Message
	for _, msg := range s.messages {
		if msg.IsPinned {
			pinned = append(pinned, msg)
		}
	}
	return pinned
}

// TogglePin flips the pin flag of a message, confirm-then-flip: the
// remote toggle runs first and the local flag only changes once the
// store acknowledges. An unknown ID or a remote rejection leaves local
// state untouched and returns the error.
func (s *MessageStore) TogglePin(ctx context.Context, messageID string) error {
	s.mu.RLock()
	var target *model.Message
	for _, msg := range s.messages {
		if msg.ID == messageID {
			target = msg
			break
		}
	}
	s.mu.RUnlock()

	if target == nil {
		return ErrMessageNotFound
	}

	if s.pins != nil {
		pinned, err := s.pins.TogglePin(ctx, messageID)
		if err != nil {
			return &Error{Kind: ErrKindStorage, Message: "pin toggle rejected", Cause: err}
		}
		s.mu.Lock()
		target.IsPinned = pinned
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	target.IsPinned = !target.IsPinned
	s.mu.Unlock()
	return nil
}
