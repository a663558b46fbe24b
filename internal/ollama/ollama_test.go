// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReaderParsesDeltasAndTerminal(t *testing.T) {
	body := `{"model":"llama3.2","message":{"role":"assistant","content":"Hel"},"done":false}
{"model":"llama3.2","message":{"role":"assistant","content":"lo"},"done":false}
{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","eval_count":2,"eval_duration":1000000000}
`
	reader := NewStreamReader(strings.NewReader(body))

	var contents []string
	var last *StreamChunk
	for {
		chunk, err := reader.Next()
		if err != nil {
			break
		}
		contents = append(contents, chunk.Content)
		last = chunk
		if chunk.Done {
			break
		}
	}

	if got := strings.Join(contents, ""); got != "Hello" {
		t.Errorf("accumulated content = %q, want %q", got, "Hello")
	}
	if last == nil || !last.Done {
		t.Fatal("expected terminal chunk")
	}
	if last.DoneReason != "stop" {
		t.Errorf("DoneReason = %q, want stop", last.DoneReason)
	}
	if last.CompletionTokens != 2 {
		t.Errorf("CompletionTokens = %d, want 2", last.CompletionTokens)
	}
	if last.EvalDuration != time.Second {
		t.Errorf("EvalDuration = %v, want 1s", last.EvalDuration)
	}
}

func TestStreamReaderSkipsMalformedLines(t *testing.T) {
	body := `not json at all
{"message":{"content":"ok"},"done":false}
{"message":{"content":""},"done":true}
`
	reader := NewStreamReader(strings.NewReader(body))

	chunk, err := reader.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if chunk.Content != "ok" {
		t.Errorf("Content = %q, want ok", chunk.Content)
	}
}

func TestStreamReaderHandlesUnterminatedLastLine(t *testing.T) {
	body := `{"message":{"content":"tail"},"done":true}`
	reader := NewStreamReader(strings.NewReader(body))

	chunk, err := reader.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if chunk.Content != "tail" || !chunk.Done {
		t.Errorf("chunk = %+v, want tail/done", chunk)
	}
}

func TestStreamChunkTokensPerSecond(t *testing.T) {
	chunk := StreamChunk{CompletionTokens: 50, EvalDuration: 2 * time.Second}
	if got := chunk.TokensPerSecond(); got != 25 {
		t.Errorf("TokensPerSecond() = %v, want 25", got)
	}

	zero := StreamChunk{CompletionTokens: 50}
	if got := zero.TokensPerSecond(); got != 0 {
		t.Errorf("TokensPerSecond() with zero duration = %v, want 0", got)
	}
}

// =============================================================================
// TYPE MAPPING TESTS
// =============================================================================

func TestOptionsFromParams(t *testing.T) {
	params := model.GenerationParams{
		Temperature:   0.7,
		TopP:          0.95,
		TopK:          50,
		RepeatPenalty: 1.2,
		MaxTokens:     512,
	}
	opts := OptionsFromParams(params)

	if opts.Temperature != 0.7 || opts.TopP != 0.95 || opts.TopK != 50 {
		t.Errorf("sampling options not mapped: %+v", opts)
	}
	if opts.RepeatPenalty != 1.2 {
		t.Errorf("RepeatPenalty = %v, want 1.2", opts.RepeatPenalty)
	}
	if opts.NumPredict != 512 {
		t.Errorf("NumPredict = %v, want 512", opts.NumPredict)
	}
}

func TestMessagesFromModel(t *testing.T) {
	msgs := []model.Message{
		*model.NewSystemMessage("be brief"),
		*model.NewUserMessage("hi"),
	}
	wire := MessagesFromModel(msgs)

	if len(wire) != 2 {
		t.Fatalf("len = %d, want 2", len(wire))
	}
	if wire[0].Role != "system" || wire[0].Content != "be brief" {
		t.Errorf("wire[0] = %+v", wire[0])
	}
	if wire[1].Role != "user" || wire[1].Content != "hi" {
		t.Errorf("wire[1] = %+v", wire[1])
	}
}

func TestPullProgressPercent(t *testing.T) {
	p := PullProgress{Total: 200, Completed: 50}
	if got := p.Percent(); got != 25 {
		t.Errorf("Percent() = %v, want 25", got)
	}

	unknown := PullProgress{Completed: 50}
	if got := unknown.Percent(); got != 0 {
		t.Errorf("Percent() with unknown total = %v, want 0", got)
	}
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func newTestClient(serverURL string) *Client {
	return NewClientWithConfig(&ClientConfig{BaseURL: serverURL, Timeout: 5 * time.Second})
}

func TestChatStreamDeliversChunksAndCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"message":{"content":"a"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":"b"},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":""},"done":true,"done_reason":"stop"}` + "\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ch, err := client.ChatStream(context.Background(), "llama3.2", []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	var content strings.Builder
	var sawDone bool
	for chunk := range ch {
		if chunk.Error != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Error)
		}
		content.WriteString(chunk.Content)
		if chunk.Done {
			sawDone = true
		}
	}

	if content.String() != "ab" {
		t.Errorf("content = %q, want ab", content.String())
	}
	if !sawDone {
		t.Error("terminal chunk never arrived")
	}
}

func TestChatStreamRejectsUnknownModelSynchronously(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatStream(context.Background(), "no-such-model", nil, nil)
	if !IsModelNotFound(err) {
		t.Errorf("expected model-not-found, got %v", err)
	}
}

func TestChatStreamSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model requires more memory"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatStream(context.Background(), "llama3.2", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "more memory") {
		t.Errorf("expected server error message, got %v", err)
	}
}

func TestChatStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"partial"},"done":false}` + "\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(server.URL)
	ch, err := client.ChatStream(ctx, "llama3.2", []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}

	first := <-ch
	if first.Content != "partial" {
		t.Fatalf("first chunk = %+v", first)
	}

	cancel()

	// Cancellation must end in a delivered terminal chunk, never in a
	// bare channel close the receiver would mistake for completion.
	var terminal StreamChunk
	sawTerminal := false
	for chunk := range ch {
		terminal = chunk
		sawTerminal = true
	}
	if !sawTerminal {
		t.Fatal("stream closed without a terminal chunk")
	}
	if !terminal.Done {
		t.Errorf("terminal chunk Done = false: %+v", terminal)
	}
	if !errors.Is(terminal.Error, context.Canceled) {
		t.Errorf("terminal error = %v, want context.Canceled", terminal.Error)
	}
}

func TestCheckRunningAgainstStoppedServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url)
	err := client.CheckRunning(context.Background())
	if !IsNotRunning(err) {
		t.Errorf("expected not-running, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2:3b","size":2000000000},{"name":"qwen2.5:7b","size":4700000000}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].Name != "llama3.2:3b" {
		t.Errorf("models[0].Name = %q", models[0].Name)
	}
}

func TestPullModelProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"pulling manifest"}` + "\n"))
		w.Write([]byte(`{"status":"downloading","digest":"sha256:abc","total":100,"completed":50}` + "\n"))
		w.Write([]byte(`{"status":"success"}` + "\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	var statuses []string
	err := client.PullModel(context.Background(), "llama3.2", func(p PullProgress) {
		statuses = append(statuses, p.Status)
	})
	if err != nil {
		t.Fatalf("PullModel() error = %v", err)
	}
	if len(statuses) != 3 || statuses[2] != "success" {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestPullModelServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"pull model manifest: file does not exist"}` + "\n"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.PullModel(context.Background(), "bogus", nil)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected manifest error, got %v", err)
	}
}
