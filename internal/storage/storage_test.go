// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/cortex-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "chats.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetChat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, "my first chat", "llama3.2")
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	if chat.ID == "" {
		t.Error("chat id not assigned")
	}

	got, err := store.GetChat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("GetChat() error = %v", err)
	}
	if got.Title != "my first chat" || got.Model != "llama3.2" {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not persisted")
	}
}

func TestGetChatNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetChat(context.Background(), "missing")
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("expected ErrChatNotFound, got %v", err)
	}
}

func TestListChatsOrderedByActivity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, _ := store.CreateChat(ctx, "first", "llama3.2")
	time.Sleep(5 * time.Millisecond)
	second, _ := store.CreateChat(ctx, "second", "llama3.2")
	time.Sleep(5 * time.Millisecond)

	// Touching the older chat moves it to the front.
	msg := model.NewUserMessage("bump")
	if err := store.AddMessage(ctx, first.ID, msg); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	chats, err := store.ListChats(ctx)
	if err != nil {
		t.Fatalf("ListChats() error = %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("len(chats) = %d, want 2", len(chats))
	}
	if chats[0].ID != first.ID {
		t.Error("recently active chat not listed first")
	}
	if chats[1].ID != second.ID {
		t.Error("idle chat not listed last")
	}
}

func TestAddMessageRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "chat", "llama3.2")
	user := model.NewUserMessage("what is a channel?")
	user.SystemPromptType = "chat"
	assistant := model.NewAssistantMessage("a typed conduit")

	if err := store.AddMessage(ctx, chat.ID, user); err != nil {
		t.Fatalf("AddMessage(user) error = %v", err)
	}
	if err := store.AddMessage(ctx, chat.ID, assistant); err != nil {
		t.Fatalf("AddMessage(assistant) error = %v", err)
	}

	msgs, err := store.ChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ChatMessages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "what is a channel?" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[0].SystemPromptType != "chat" {
		t.Errorf("SystemPromptType = %q", msgs[0].SystemPromptType)
	}
	if msgs[1].Role != model.RoleAssistant {
		t.Errorf("msgs[1] role = %q", msgs[1].Role)
	}
	if msgs[0].Timestamp.IsZero() {
		t.Error("timestamp lost in round trip")
	}
}

func TestAddMessageToUnknownChat(t *testing.T) {
	store := openTestStore(t)
	err := store.AddMessage(context.Background(), "missing", model.NewUserMessage("hi"))
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("expected ErrChatNotFound, got %v", err)
	}
}

func TestTogglePinRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "chat", "llama3.2")
	msg := model.NewUserMessage("pin me")
	store.AddMessage(ctx, chat.ID, msg)

	pinned, err := store.TogglePin(ctx, msg.ID)
	if err != nil {
		t.Fatalf("TogglePin() error = %v", err)
	}
	if !pinned {
		t.Error("first toggle should pin")
	}

	pinned, err = store.TogglePin(ctx, msg.ID)
	if err != nil {
		t.Fatalf("TogglePin() error = %v", err)
	}
	if pinned {
		t.Error("second toggle should unpin")
	}
}

func TestTogglePinUnknownMessage(t *testing.T) {
	store := openTestStore(t)
	_, err := store.TogglePin(context.Background(), "missing")
	if !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
}

func TestPinnedMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "chat", "llama3.2")
	a := model.NewUserMessage("a")
	b := model.NewAssistantMessage("b")
	store.AddMessage(ctx, chat.ID, a)
	store.AddMessage(ctx, chat.ID, b)
	store.TogglePin(ctx, b.ID)

	pinned, err := store.PinnedMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("PinnedMessages() error = %v", err)
	}
	if len(pinned) != 1 || pinned[0].ID != b.ID {
		t.Errorf("pinned = %+v", pinned)
	}
}

func TestDeleteChatCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "doomed", "llama3.2")
	store.AddMessage(ctx, chat.ID, model.NewUserMessage("hi"))

	if err := store.DeleteChat(ctx, chat.ID); err != nil {
		t.Fatalf("DeleteChat() error = %v", err)
	}

	if _, err := store.GetChat(ctx, chat.ID); !errors.Is(err, ErrChatNotFound) {
		t.Error("chat survived deletion")
	}
	msgs, err := store.ChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ChatMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("messages survived cascade: %d", len(msgs))
	}

	if err := store.DeleteChat(ctx, chat.ID); !errors.Is(err, ErrChatNotFound) {
		t.Error("double delete should report not-found")
	}
}

func TestRenameChat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "old title", "llama3.2")
	if err := store.RenameChat(ctx, chat.ID, "new title"); err != nil {
		t.Fatalf("RenameChat() error = %v", err)
	}

	got, _ := store.GetChat(ctx, chat.ID)
	if got.Title != "new title" {
		t.Errorf("title = %q", got.Title)
	}
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

func TestExportChatDocument(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "exported", "llama3.2")
	msg := model.NewUserMessage("keep me")
	store.AddMessage(ctx, chat.ID, msg)
	store.TogglePin(ctx, msg.ID)

	data, err := store.ExportChat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("ExportChat() error = %v", err)
	}

	var doc ChatExport
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", doc.Version)
	}
	if doc.Chat.Title != "exported" {
		t.Errorf("title = %q", doc.Chat.Title)
	}
	if len(doc.Chat.Messages) != 1 || !doc.Chat.Messages[0].IsPinned {
		t.Errorf("messages = %+v", doc.Chat.Messages)
	}
}

func TestExportUnknownChat(t *testing.T) {
	store := openTestStore(t)
	_, err := store.ExportChat(context.Background(), "missing")
	if !errors.Is(err, ErrChatNotFound) {
		t.Errorf("expected ErrChatNotFound, got %v", err)
	}
}

func TestImportRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, _ := store.CreateChat(ctx, "original", "llama3.2")
	store.AddMessage(ctx, chat.ID, model.NewUserMessage("q"))
	store.AddMessage(ctx, chat.ID, model.NewAssistantMessage("a"))

	data, err := store.ExportChat(ctx, chat.ID)
	if err != nil {
		t.Fatal(err)
	}

	imported, err := store.ImportChat(ctx, data)
	if err != nil {
		t.Fatalf("ImportChat() error = %v", err)
	}
	if imported.ID == chat.ID {
		t.Error("import reused the original chat id")
	}
	if imported.Title != "original" {
		t.Errorf("title = %q", imported.Title)
	}

	msgs, _ := store.ChatMessages(ctx, imported.ID)
	if len(msgs) != 2 || msgs[0].Content != "q" || msgs[1].Content != "a" {
		t.Errorf("imported messages = %+v", msgs)
	}

	// Importing the same document again must not collide.
	if _, err := store.ImportChat(ctx, data); err != nil {
		t.Errorf("second import failed: %v", err)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	store := openTestStore(t)
	_, err := store.ImportChat(context.Background(), []byte(`{"version":"9.9","chat":{}}`))
	if err == nil {
		t.Error("expected version error")
	}
}

