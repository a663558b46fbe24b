// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the Cortex
// chat application: messages and roles, chat records, generation
// parameters, search results, and follow-up suggestions.
//
// The types here are deliberately free of behavior tied to any
// particular transport or storage layer. The chat core
// (internal/chat), the Ollama client (internal/ollama), the SQLite
// store (internal/storage), and the search providers (internal/search)
// all exchange these types.
package model
