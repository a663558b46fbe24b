// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	core "github.com/jeranaias/cortex-tui/internal/chat"
	"github.com/jeranaias/cortex-tui/internal/model"
	"github.com/jeranaias/cortex-tui/internal/ollama"
	"github.com/jeranaias/cortex-tui/internal/storage"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// listenForUpdates bridges session notifications into the Bubble Tea
// loop. Sessions push into the channel from their own goroutines; this
// command blocks until one arrives and is re-issued after each
// delivery.
func listenForUpdates(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return sessionUpdatedMsg{}
	}
}

// sendCmd dispatches a user message. Augmentation runs inside Send, so
// this must stay off the update loop.
func sendCmd(controller *core.Controller, s *core.Session, text string) tea.Cmd {
	return func() tea.Msg {
		return sendFinishedMsg{err: controller.Send(context.Background(), s, text)}
	}
}

// loadChatsCmd fetches the stored chat list, most recently active
// first.
func loadChatsCmd(manager *core.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		chats, err := manager.ListChats(ctx)
		return chatsLoadedMsg{chats: chats, err: err}
	}
}

// loadModelsCmd fetches the installed model list from Ollama.
func loadModelsCmd(client *ollama.Client) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return modelsLoadedMsg{err: ollama.ErrNotRunning}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := client.ListModels(ctx)
		return modelsLoadedMsg{models: models, err: err}
	}
}

// openChatCmd opens a stored chat as a new session tab.
func openChatCmd(manager *core.Manager, c *model.Chat) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := manager.OpenExisting(ctx, c)
		return sessionOpenedMsg{err: err}
	}
}

// newChatEagerCmd starts a chat with its row persisted up front, so it
// shows in the chat list before anything is sent.
func newChatEagerCmd(manager *core.Manager, modelName string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := manager.CreateNewEager(ctx, modelName)
		return sessionOpenedMsg{err: err}
	}
}

// deleteChatCmd deletes a stored chat and its messages.
func deleteChatCmd(manager *core.Manager, chatID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return chatDeletedMsg{err: manager.DeleteChat(ctx, chatID)}
	}
}

// togglePinCmd flips a message pin through the store.
func togglePinCmd(controller *core.Controller, s *core.Session, messageID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return pinToggledMsg{err: controller.TogglePin(ctx, s, messageID)}
	}
}

// exportChatCmd writes the active chat to a JSON document.
func exportChatCmd(store *storage.Store, chatID, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return exportFinishedMsg{path: path, err: store.ExportChatToFile(ctx, chatID, path)}
	}
}
