// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages cortex configuration.
//
// Configuration lives in a TOML file at ~/.cortex/config.toml. Missing
// fields fall back to defaults, so a partial file is always valid.
// A file watcher can reload the file on change so edits to generation
// parameters take effect without restarting.
package config
