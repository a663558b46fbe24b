// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the streaming-chat session state machine at
// the heart of Cortex: per-session message stores, the stream
// accumulator that turns delta events into committed messages, the
// generation controller that orchestrates a send end-to-end, and the
// session manager that binds chat identities to models.
//
// The package owns no transport. Generation, persistence, and search
// are consumed through the Generator, ChatStore, and Augmenter
// interfaces; internal/ollama, internal/storage, and internal/search
// provide the production implementations.
//
// Concurrency model: each session's mutable state is guarded by its own
// mutex, and sessions never share mutable state. Multiple sessions may
// generate concurrently; within one session at most one generation is
// in flight at a time.
package chat
