// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// STREAM READER
// =============================================================================

// terminalSendGrace bounds how long the stream goroutine waits to hand
// the terminal chunk to a receiver that may have stopped listening.
const terminalSendGrace = time.Second

// StreamReader handles line-by-line JSON parsing of streaming chat
// responses.
type StreamReader struct {
	reader *bufio.Reader
	model  string
}

// NewStreamReader creates a stream reader over an NDJSON body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Next reads and parses the next chunk. Returns io.EOF when the stream
// is exhausted. Malformed lines are skipped.
func (s *StreamReader) Next() (*StreamChunk, error) {
	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if len(line) == 0 {
				return nil, err
			}
			// Fall through: parse the unterminated last line.
		}
		if len(bytes.TrimSpace(line)) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}

		var resp ChatResponse
		if jsonErr := json.Unmarshal(line, &resp); jsonErr != nil {
			if err != nil {
				return nil, err
			}
			continue
		}

		if resp.Model != "" {
			s.model = resp.Model
		}

		chunk := &StreamChunk{
			Content:    resp.Message.Content,
			Done:       resp.Done,
			DoneReason: resp.DoneReason,
			Model:      s.model,
		}
		if resp.Done {
			chunk.TotalDuration = time.Duration(resp.TotalDuration)
			chunk.LoadDuration = time.Duration(resp.LoadDuration)
			chunk.PromptEvalDuration = time.Duration(resp.PromptEvalDuration)
			chunk.EvalDuration = time.Duration(resp.EvalDuration)
			chunk.PromptTokens = resp.PromptEvalCount
			chunk.CompletionTokens = resp.EvalCount
		}
		return chunk, nil
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream opens a streaming chat completion. The request is
// accepted or rejected synchronously: a non-nil error means nothing
// was dispatched. On success the returned channel delivers chunks
// until a terminal chunk (Done or Error set), then closes.
//
// Cancelling ctx ends the stream; the final chunk then carries
// ctx.Err() so the caller can distinguish cancellation from normal
// completion.
func (c *Client) ChatStream(ctx context.Context, modelName string, messages []Message, opts *Options) (<-chan StreamChunk, error) {
	body, err := json.Marshal(ChatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   true,
		Options:  opts,
	})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// No timeout on the stream client: long generations are legal and
	// the context bounds the connection.
	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp, "stream request failed")
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		reader := NewStreamReader(resp.Body)
		for {
			chunk, err := reader.Next()
			if err != nil {
				if err == io.EOF {
					return
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				}
				// Selecting on ctx.Done here would drop the terminal
				// chunk at random after cancellation, since both cases
				// are ready at once. A grace timer instead: a receiver
				// still draining the channel always gets the chunk, and
				// an abandoned one cannot leak this goroutine forever.
				select {
				case ch <- StreamChunk{Error: err, Done: true}:
				case <-time.After(terminalSendGrace):
				}
				return
			}

			select {
			case ch <- *chunk:
			case <-ctx.Done():
				select {
				case ch <- StreamChunk{Error: ctx.Err(), Done: true}:
				case <-time.After(terminalSendGrace):
				}
				return
			}
			if chunk.Done {
				return
			}
		}
	}()

	return ch, nil
}
