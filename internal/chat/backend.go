// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// GENERATION REQUEST
// =============================================================================

// GenerationRequest describes one chat-completion request. It is
// ephemeral: built at send time and never persisted.
type GenerationRequest struct {
	// Model is the serving model name.
	Model string

	// Messages is the full ordered outbound list: behavior-mode system
	// prompt, history, the new user message, and the optional
	// synthesized retrieval-context message.
	Messages []model.Message

	// Params are the sampling parameters, copied from the session at
	// send time.
	Params model.GenerationParams

	// ChatID is the persistent chat this generation belongs to.
	ChatID string

	// Token is the correlation token routing stream events back to
	// the originating session instance.
	Token string

	// SuggestionKind tags follow-up suggestions extracted from the
	// completed response.
	SuggestionKind model.SuggestionKind
}

// =============================================================================
// COLLABORATOR CONTRACTS
// =============================================================================

// Generator is the model-serving backend. internal/ollama provides the
// production implementation.
type Generator interface {
	// Generate validates and dispatches the request. It returns an
	// error only when the backend cannot accept the request at all
	// (surfaced as BackendUnavailable); otherwise it returns a channel
	// of events for req.Token which is closed after the terminal
	// event. Cancelling ctx requests cooperative cancellation: deltas
	// may still arrive before the terminal Cancelled event.
	Generate(ctx context.Context, req GenerationRequest) (<-chan Event, error)
}

// ChatStore is the persistence collaborator. internal/storage provides
// the SQLite implementation.
type ChatStore interface {
	CreateChat(ctx context.Context, title, modelName string) (*model.Chat, error)
	ListChats(ctx context.Context) ([]*model.Chat, error)
	ChatMessages(ctx context.Context, chatID string) ([]*model.Message, error)
	AddMessage(ctx context.Context, chatID string, msg *model.Message) error
	TogglePin(ctx context.Context, messageID string) (bool, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// Augmenter performs retrieval augmentation: given a user query and a
// search mode it returns the synthesized context prompt.
// internal/search provides the production implementation.
type Augmenter interface {
	Augment(ctx context.Context, query string, mode model.SearchMode) (string, error)
}

// Searcher is the raw query-to-results contract underneath the
// Augmenter.
type Searcher interface {
	Search(ctx context.Context, query string, mode model.SearchMode) ([]model.SearchResult, error)
}
