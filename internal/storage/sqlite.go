// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a persistence error.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is supports errors.Is comparison against store error sentinels.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// Sentinel errors.
var (
	ErrChatNotFound    = &StoreError{Message: "chat not found"}
	ErrMessageNotFound = &StoreError{Message: "message not found"}
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS chats (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	model      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id                 TEXT PRIMARY KEY,
	chat_id            TEXT NOT NULL,
	role               TEXT NOT NULL,
	content            TEXT NOT NULL,
	is_pinned          INTEGER NOT NULL DEFAULT 0,
	system_prompt_type TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	FOREIGN KEY (chat_id) REFERENCES chats (id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id, created_at);
`

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed chat store. Safe for concurrent use; the
// underlying *sql.DB serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StoreError{Message: "create data directory", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Message: "open database", Cause: err}
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, &StoreError{Message: "enable foreign keys", Cause: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StoreError{Message: "apply schema", Cause: err}
	}

	return &Store{db: db}, nil
}

// DefaultPath returns the standard database location,
// ~/.cortex/chats.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cortex", "chats.db"), nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// CreateChat inserts a new chat and returns it.
func (s *Store) CreateChat(ctx context.Context, title, modelName string) (*model.Chat, error) {
	now := time.Now().UTC()
	chat := &model.Chat{
		ID:        uuid.NewString(),
		Title:     title,
		Model:     modelName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		chat.ID, chat.Title, chat.Model, formatTime(now), formatTime(now))
	if err != nil {
		return nil, &StoreError{Message: "insert chat", Cause: err}
	}
	return chat, nil
}

// GetChat returns one chat by ID.
func (s *Store) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, model, created_at, updated_at FROM chats WHERE id = ?`, chatID)
	chat, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, &StoreError{Message: "query chat", Cause: err}
	}
	return chat, nil
}

// ListChats returns all chats, most recently updated first.
func (s *Store) ListChats(ctx context.Context) ([]*model.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, model, created_at, updated_at FROM chats ORDER BY updated_at DESC`)
	if err != nil {
		return nil, &StoreError{Message: "list chats", Cause: err}
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, &StoreError{Message: "scan chat", Cause: err}
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "list chats", Cause: err}
	}
	return chats, nil
}

// RenameChat updates a chat's title.
func (s *Store) RenameChat(ctx context.Context, chatID, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`,
		title, formatTime(time.Now().UTC()), chatID)
	if err != nil {
		return &StoreError{Message: "rename chat", Cause: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteChat removes a chat and, via cascade, its messages.
func (s *Store) DeleteChat(ctx context.Context, chatID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, chatID)
	if err != nil {
		return &StoreError{Message: "delete chat", Cause: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChatNotFound
	}
	return nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AddMessage persists a message and bumps its chat's updated_at so the
// chat list reorders by activity.
func (s *Store) AddMessage(ctx context.Context, chatID string, msg *model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Message: "begin transaction", Cause: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, role, content, is_pinned, system_prompt_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, chatID, string(msg.Role), msg.Content, boolToInt(msg.IsPinned), msg.SystemPromptType, formatTime(msg.Timestamp.UTC()))
	if err != nil {
		return &StoreError{Message: "insert message", Cause: err}
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE chats SET updated_at = ? WHERE id = ?`,
		formatTime(msg.Timestamp.UTC()), chatID)
	if err != nil {
		return &StoreError{Message: "touch chat", Cause: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChatNotFound
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Message: "commit message", Cause: err}
	}
	return nil
}

// ChatMessages returns a chat's messages in chronological order.
func (s *Store) ChatMessages(ctx context.Context, chatID string) ([]*model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, is_pinned, system_prompt_type, created_at
		 FROM messages WHERE chat_id = ? ORDER BY created_at ASC, rowid ASC`, chatID)
	if err != nil {
		return nil, &StoreError{Message: "query messages", Cause: err}
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var (
			msg        model.Message
			role       string
			pinned     int
			createdRaw string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &pinned, &msg.SystemPromptType, &createdRaw); err != nil {
			return nil, &StoreError{Message: "scan message", Cause: err}
		}
		msg.Role = model.Role(role)
		msg.IsPinned = pinned != 0
		msg.Timestamp = parseTime(createdRaw)
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "query messages", Cause: err}
	}
	return msgs, nil
}

// TogglePin flips a message's pin flag and returns the new value.
func (s *Store) TogglePin(ctx context.Context, messageID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, &StoreError{Message: "begin transaction", Cause: err}
	}
	defer tx.Rollback()

	var pinned int
	err = tx.QueryRowContext(ctx,
		`SELECT is_pinned FROM messages WHERE id = ?`, messageID).Scan(&pinned)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrMessageNotFound
	}
	if err != nil {
		return false, &StoreError{Message: "query pin state", Cause: err}
	}

	next := pinned == 0
	if _, err := tx.ExecContext(ctx,
		`UPDATE messages SET is_pinned = ? WHERE id = ?`, boolToInt(next), messageID); err != nil {
		return false, &StoreError{Message: "update pin state", Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return false, &StoreError{Message: "commit pin toggle", Cause: err}
	}
	return next, nil
}

// PinnedMessages returns a chat's pinned messages in chronological
// order.
func (s *Store) PinnedMessages(ctx context.Context, chatID string) ([]*model.Message, error) {
	msgs, err := s.ChatMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	var pinned []*model.Message
	for _, msg := range msgs {
		if msg.IsPinned {
			pinned = append(pinned, msg)
		}
	}
	return pinned, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*model.Chat, error) {
	var (
		chat       model.Chat
		createdRaw string
		updatedRaw string
	)
	if err := row.Scan(&chat.ID, &chat.Title, &chat.Model, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	chat.CreatedAt = parseTime(createdRaw)
	chat.UpdatedAt = parseTime(updatedRaw)
	return &chat, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// parseTime accepts RFC 3339 with or without sub-second precision.
// Unparseable values yield the zero time rather than an error; a
// corrupt timestamp should not make a chat unloadable.
func parseTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
