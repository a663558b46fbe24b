// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/cortex-tui/internal/model"
	"github.com/jeranaias/cortex-tui/internal/util"
)

// =============================================================================
// EXPORT FORMAT
// =============================================================================

// ExportVersion is the chat export document version.
const ExportVersion = "1.0"

// ChatExport is the top-level export document.
type ChatExport struct {
	Version string         `json:"version"`
	Chat    ChatExportData `json:"chat"`
}

// ChatExportData is the exported chat with its messages inline.
type ChatExportData struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Model     string          `json:"model"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Messages  []MessageExport `json:"messages"`
}

// MessageExport is one exported message.
type MessageExport struct {
	ID               string `json:"id"`
	Role             string `json:"role"`
	Content          string `json:"content"`
	IsPinned         bool   `json:"is_pinned,omitempty"`
	SystemPromptType string `json:"system_prompt_type,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportChat serializes one chat and its messages as a pretty-printed
// versioned JSON document.
func (s *Store) ExportChat(ctx context.Context, chatID string) ([]byte, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.ChatMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	doc := ChatExport{
		Version: ExportVersion,
		Chat: ChatExportData{
			ID:        chat.ID,
			Title:     chat.Title,
			Model:     chat.Model,
			CreatedAt: formatTime(chat.CreatedAt),
			UpdatedAt: formatTime(chat.UpdatedAt),
		},
	}
	for _, msg := range msgs {
		doc.Chat.Messages = append(doc.Chat.Messages, MessageExport{
			ID:               msg.ID,
			Role:             string(msg.Role),
			Content:          msg.Content,
			IsPinned:         msg.IsPinned,
			SystemPromptType: msg.SystemPromptType,
			CreatedAt:        formatTime(msg.Timestamp),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &StoreError{Message: "serialize export", Cause: err}
	}
	return data, nil
}

// ExportChatToFile writes the export document atomically.
func (s *Store) ExportChatToFile(ctx context.Context, chatID, path string) error {
	data, err := s.ExportChat(ctx, chatID)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return &StoreError{Message: "write export file", Cause: err}
	}
	return nil
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportChat recreates a chat from an export document. The chat gets a
// fresh ID so importing never collides with existing rows; message
// order, pin flags, and timestamps are preserved.
func (s *Store) ImportChat(ctx context.Context, data []byte) (*model.Chat, error) {
	var doc ChatExport
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StoreError{Message: "parse export document", Cause: err}
	}
	if doc.Version != ExportVersion {
		return nil, &StoreError{Message: "unsupported export version: " + doc.Version}
	}

	now := time.Now().UTC()
	chat := &model.Chat{
		ID:        uuid.NewString(),
		Title:     doc.Chat.Title,
		Model:     doc.Chat.Model,
		CreatedAt: parseTime(doc.Chat.CreatedAt),
		UpdatedAt: now,
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StoreError{Message: "begin transaction", Cause: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		chat.ID, chat.Title, chat.Model, formatTime(chat.CreatedAt), formatTime(chat.UpdatedAt))
	if err != nil {
		return nil, &StoreError{Message: "insert imported chat", Cause: err}
	}

	for _, msg := range doc.Chat.Messages {
		// Fresh message IDs too: the same document may be imported
		// more than once.
		id := uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, chat_id, role, content, is_pinned, system_prompt_type, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, chat.ID, msg.Role, msg.Content, boolToInt(msg.IsPinned), msg.SystemPromptType, msg.CreatedAt)
		if err != nil {
			return nil, &StoreError{Message: "insert imported message", Cause: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &StoreError{Message: "commit import", Cause: err}
	}
	return chat, nil
}

// ImportChatFromFile reads and imports an export document.
func (s *Store) ImportChatFromFile(ctx context.Context, path string) (*model.Chat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StoreError{Message: "read export file", Cause: err}
	}
	return s.ImportChat(ctx, data)
}
