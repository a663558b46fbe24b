// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// =============================================================================
// MODEL PULL
// =============================================================================

// PullProgressFunc receives download progress updates. Called
// synchronously in arrival order.
type PullProgressFunc func(progress PullProgress)

// PullModel downloads a model, streaming NDJSON progress through
// onProgress (which may be nil). Blocks until the pull finishes, the
// server reports an error, or ctx is cancelled.
func (c *Client) PullModel(ctx context.Context, name string, onProgress PullProgressFunc) error {
	body, err := json.Marshal(PullRequest{Name: name, Stream: true})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulls can run for many minutes; context, not client timeout,
	// bounds them.
	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp, "pull request failed")
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var envelope apiError
		if json.Unmarshal(line, &envelope) == nil && envelope.Error != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: envelope.Error}
		}

		var progress PullProgress
		if json.Unmarshal(line, &progress) != nil {
			continue
		}
		if onProgress != nil {
			onProgress(progress)
		}
		if progress.Status == "success" {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "pull stream interrupted", Cause: err}
	}
	return nil
}
