// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/jeranaias/cortex-tui/internal/model"
)

func deltas(token string, texts ...string) []Event {
	var out []Event
	for _, text := range texts {
		out = append(out, Event{Type: EventDelta, Token: token, Text: text})
	}
	return out
}

func TestAccumulatorCommitsDeltasInOrder(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)
	acc.Begin("tok-1", "chat", nil)

	for _, ev := range deltas("tok-1", "Hel", "lo, ", "world") {
		acc.Consume(ev)
	}
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})

	msgs := store.Messages()
	if len(msgs) != 1 {
		t.Fatalf("committed %d messages, want 1", len(msgs))
	}
	if msgs[0].Content != "Hello, world" {
		t.Errorf("content = %q, want %q", msgs[0].Content, "Hello, world")
	}
	if msgs[0].Role != model.RoleAssistant {
		t.Errorf("role = %q, want assistant", msgs[0].Role)
	}
	if acc.State() != StateCompleted {
		t.Errorf("state = %v, want completed", acc.State())
	}
}

func TestAccumulatorDuplicateTerminalIsNoOp(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)

	calls := 0
	acc.Begin("tok-1", "chat", func(*model.Message, bool, []model.FollowUpSuggestion, error) {
		calls++
	})

	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "x"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})
	acc.Consume(Event{Type: EventCancelled, Token: "tok-1"})

	if got := store.Len(); got != 1 {
		t.Errorf("committed %d messages, want 1", got)
	}
	if calls != 1 {
		t.Errorf("finalize ran %d times, want 1", calls)
	}
}

func TestAccumulatorStaleTerminalsAcrossGenerations(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)

	acc.Begin("tok-1", "chat", nil)
	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "first"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})

	// A late duplicate for the previous generation must not disturb the
	// one now streaming.
	acc.Begin("tok-2", "chat", nil)
	acc.Consume(Event{Type: EventDelta, Token: "tok-2", Text: "second"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})
	if acc.State() != StateStreaming {
		t.Fatalf("stale terminal changed state to %v", acc.State())
	}
	acc.Consume(Event{Type: EventComplete, Token: "tok-2"})

	// Terminals from two generations back are equally inert.
	acc.Begin("tok-3", "chat", nil)
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})
	if acc.State() != StateStreaming {
		t.Fatalf("ancient terminal changed state to %v", acc.State())
	}
	acc.Consume(Event{Type: EventComplete, Token: "tok-3"})

	msgs := store.Messages()
	if len(msgs) != 2 {
		t.Fatalf("committed %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Errorf("messages = %q, %q", msgs[0].Content, msgs[1].Content)
	}
}

func TestAccumulatorCancellationPreservesPartialOutput(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)
	acc.Begin("tok-1", "chat", nil)

	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "Partial"})
	acc.Consume(Event{Type: EventCancelled, Token: "tok-1"})

	msgs := store.Messages()
	if len(msgs) != 1 {
		t.Fatalf("committed %d messages, want 1", len(msgs))
	}
	if msgs[0].Content != "Partial" {
		t.Errorf("content = %q, want Partial", msgs[0].Content)
	}
	if acc.State() != StateCancelled {
		t.Errorf("state = %v, want cancelled", acc.State())
	}
}

func TestAccumulatorEmptyBufferCancellationCommitsNothing(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)

	var committed *model.Message
	finalized := false
	acc.Begin("tok-1", "chat", func(msg *model.Message, cancelled bool, _ []model.FollowUpSuggestion, _ error) {
		committed = msg
		finalized = true
		if !cancelled {
			t.Error("finalize cancelled = false, want true")
		}
	})

	acc.Consume(Event{Type: EventCancelled, Token: "tok-1"})

	if store.Len() != 0 {
		t.Errorf("committed %d messages, want 0", store.Len())
	}
	if !finalized {
		t.Fatal("finalize never ran")
	}
	if committed != nil {
		t.Errorf("finalize got message %+v, want nil", committed)
	}
}

func TestAccumulatorIgnoresForeignTokens(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)
	acc.Begin("tok-1", "chat", nil)

	acc.Consume(Event{Type: EventDelta, Token: "tok-other", Text: "noise"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-other"})

	if acc.State() != StateStreaming {
		t.Errorf("state = %v, want streaming", acc.State())
	}
	if acc.Partial() != "" {
		t.Errorf("partial = %q, want empty", acc.Partial())
	}

	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "real"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})

	msgs := store.Messages()
	if len(msgs) != 1 || msgs[0].Content != "real" {
		t.Errorf("messages = %+v, want single 'real'", msgs)
	}
}

func TestAccumulatorPartialSnapshot(t *testing.T) {
	acc := NewStreamAccumulator(NewMessageStore(nil))
	acc.Begin("tok-1", "chat", nil)

	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "strea"})
	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "ming"})

	if got := acc.Partial(); got != "streaming" {
		t.Errorf("Partial() = %q, want streaming", got)
	}
	if !acc.InProgress() {
		t.Error("InProgress() = false, want true")
	}
}

func TestAccumulatorResetDiscardsWithoutCommit(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)
	acc.Begin("tok-1", "chat", nil)
	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "doomed"})

	acc.Reset()

	if store.Len() != 0 {
		t.Errorf("committed %d messages after reset, want 0", store.Len())
	}
	if acc.State() != StateIdle {
		t.Errorf("state = %v, want idle", acc.State())
	}

	// A terminal event for the abandoned token must not resurrect it.
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})
	if store.Len() != 0 {
		t.Errorf("committed %d messages, want 0", store.Len())
	}
}

func TestAccumulatorErrorTerminalCommitsPartialAndSurfacesError(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)

	var gotErr error
	acc.Begin("tok-1", "chat", func(_ *model.Message, _ bool, _ []model.FollowUpSuggestion, streamErr error) {
		gotErr = streamErr
	})

	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "half"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1", Err: ErrMessageNotFound})

	if store.Len() != 1 || store.Messages()[0].Content != "half" {
		t.Errorf("partial content not committed: %+v", store.Messages())
	}
	if gotErr == nil {
		t.Error("stream error not surfaced to finalize")
	}
}

func TestAccumulatorStampsPromptType(t *testing.T) {
	store := NewMessageStore(nil)
	acc := NewStreamAccumulator(store)
	acc.Begin("tok-1", "academic", nil)

	acc.Consume(Event{Type: EventDelta, Token: "tok-1", Text: "cited answer"})
	acc.Consume(Event{Type: EventComplete, Token: "tok-1"})

	if got := store.Messages()[0].SystemPromptType; got != "academic" {
		t.Errorf("SystemPromptType = %q, want academic", got)
	}
}

func TestAccStateString(t *testing.T) {
	cases := map[AccState]string{
		StateIdle:      "idle",
		StateStreaming: "streaming",
		StateCompleted: "completed",
		StateCancelled: "cancelled",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
