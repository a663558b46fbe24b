// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the cortex TUI.
//
// A Theme is built from an explicit palette selected by the configured
// theme name; the preference travels with the theme value instead of
// living in a global, so tests and previews can style against any
// palette.
package styles
