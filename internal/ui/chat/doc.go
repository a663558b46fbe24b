// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the tabbed chat view for the cortex TUI.
//
// The Bubble Tea model here is a thin presentation layer: session
// state, streaming, and persistence live in internal/chat, and the
// view re-renders whenever a session signals an update through the
// notification bridge in commands.go.
package chat
