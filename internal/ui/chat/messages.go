// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/cortex-tui/internal/model"
	"github.com/jeranaias/cortex-tui/internal/ollama"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// sessionUpdatedMsg signals that some session changed state (new
// delta, finalization, error). The view re-reads the sessions and
// re-renders.
type sessionUpdatedMsg struct{}

// sendFinishedMsg carries the synchronous result of a send dispatch.
// Streaming progress arrives separately through sessionUpdatedMsg.
type sendFinishedMsg struct {
	err error
}

// chatsLoadedMsg delivers the stored chat list for the chat picker.
type chatsLoadedMsg struct {
	chats []*model.Chat
	err   error
}

// modelsLoadedMsg delivers the installed model list for the model
// picker.
type modelsLoadedMsg struct {
	models []ollama.ModelInfo
	err    error
}

// sessionOpenedMsg reports the result of opening a stored chat.
type sessionOpenedMsg struct {
	err error
}

// chatDeletedMsg reports a deletion from the chat picker.
type chatDeletedMsg struct {
	err error
}

// pinToggledMsg reports a pin round trip.
type pinToggledMsg struct {
	err error
}

// exportFinishedMsg reports a chat export.
type exportFinishedMsg struct {
	path string
	err  error
}
