// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cortex-tui/internal/model"
)

func TestExportImportFileRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, "transfer me", "llama3.2")
	require.NoError(t, err)

	msgs := []*model.Message{
		{ID: uuid.NewString(), Role: model.RoleUser, Content: "hello there", Timestamp: time.Now().UTC()},
		{ID: uuid.NewString(), Role: model.RoleAssistant, Content: "hi!", IsPinned: true, Timestamp: time.Now().UTC()},
	}
	for _, msg := range msgs {
		require.NoError(t, store.AddMessage(ctx, chat.ID, msg))
	}

	path := filepath.Join(t.TempDir(), "exports", chat.ID+".json")
	require.NoError(t, store.ExportChatToFile(ctx, chat.ID, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"version": "1.0"`), "export document is versioned")

	imported, err := store.ImportChatFromFile(ctx, path)
	require.NoError(t, err)
	require.NotEqual(t, chat.ID, imported.ID, "import must assign a fresh chat id")
	require.Equal(t, "transfer me", imported.Title)

	history, err := store.ChatMessages(ctx, imported.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hello there", history[0].Content)
	require.True(t, history[1].IsPinned, "pin flags survive the round trip")
	require.NotEqual(t, msgs[0].ID, history[0].ID, "import must assign fresh message ids")
}

func TestImportFileMissing(t *testing.T) {
	store := openTestStore(t)
	_, err := store.ImportChatFromFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
