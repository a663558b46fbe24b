// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is the HTTP client for the local Ollama server.
//
// It covers the endpoints the application uses: health checking
// (with optional autostart of the server process), model listing and
// inspection (/api/tags, /api/show), model pulls with NDJSON progress
// (/api/pull), and streaming chat completions (/api/chat).
//
// Streaming responses are newline-delimited JSON. StreamReader parses
// them line by line; ChatStream exposes the stream as a channel of
// StreamChunk values with the terminal chunk carrying Done and timing
// statistics. The Client is safe for concurrent use.
package ollama
