// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides SQLite-backed chat persistence.
//
// Two tables hold everything: chats (id, title, model, timestamps) and
// messages (id, chat_id, role, content, pin flag, provenance tag,
// timestamp), with ON DELETE CASCADE from messages to chats.
// Timestamps are stored as RFC 3339 text. Chat listings come back most
// recently updated first, and appending a message bumps its chat's
// updated_at.
//
// The package also implements portable chat export and import as
// versioned JSON documents ("1.0").
package storage
