// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/cortex-tui/internal/ollama"
)

// =============================================================================
// OLLAMA GENERATOR
// =============================================================================

// OllamaGenerator adapts the Ollama client to the Generator contract:
// wire chunks become correlation-tagged events, and follow-up
// suggestions are extracted from the completed response's tail.
type OllamaGenerator struct {
	client *ollama.Client
}

// NewOllamaGenerator wraps an Ollama client.
func NewOllamaGenerator(client *ollama.Client) *OllamaGenerator {
	return &OllamaGenerator{client: client}
}

// Generate dispatches the request. Acceptance failures (server down,
// unknown model) return synchronously; everything after acceptance
// flows through the event channel.
func (g *OllamaGenerator) Generate(ctx context.Context, req GenerationRequest) (<-chan Event, error) {
	chunks, err := g.client.ChatStream(ctx, req.Model, ollama.MessagesFromModel(req.Messages), ollama.OptionsFromParams(req.Params))
	if err != nil {
		return nil, err
	}

	events := make(chan Event)
	go func() {
		defer close(events)

		// Mirror the stream so follow-ups can be read off the full
		// response on completion.
		var full strings.Builder
		for chunk := range chunks {
			switch {
			case chunk.Error != nil:
				if errors.Is(chunk.Error, context.Canceled) {
					events <- Event{Type: EventCancelled, Token: req.Token}
				} else {
					events <- Event{Type: EventComplete, Token: req.Token, Err: chunk.Error}
				}
				return

			case chunk.Done:
				content := full.String()
				events <- Event{
					Type:         EventComplete,
					Token:        req.Token,
					FinalContent: content,
					FollowUps:    ExtractFollowUps(content, req.SuggestionKind),
					TokensPerSec: chunk.TokensPerSecond(),
				}
				return

			case chunk.Content != "":
				full.WriteString(chunk.Content)
				events <- Event{Type: EventDelta, Token: req.Token, Text: chunk.Content}
			}
		}

		// Stream closed without a terminal chunk: treat as completion
		// of whatever arrived.
		content := full.String()
		events <- Event{
			Type:         EventComplete,
			Token:        req.Token,
			FinalContent: content,
			FollowUps:    ExtractFollowUps(content, req.SuggestionKind),
		}
	}()

	return events, nil
}
