// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/jeranaias/cortex-tui/internal/model"

// =============================================================================
// BEHAVIOR MODES
// =============================================================================

// BehaviorMode bundles a system prompt with a retrieval capability.
// Modes are session-scoped: each session keeps its own selection.
type BehaviorMode int

const (
	// ModeChat is plain conversation with no retrieval.
	ModeChat BehaviorMode = iota

	// ModeInternet augments each send with general web results.
	ModeInternet

	// ModeAcademic augments each send with scholarly results.
	ModeAcademic
)

// String returns the mode's display name.
func (m BehaviorMode) String() string {
	switch m {
	case ModeChat:
		return "Chat"
	case ModeInternet:
		return "Internet"
	case ModeAcademic:
		return "Academic"
	default:
		return "Chat"
	}
}

// PromptType is the provenance tag stamped on messages produced under
// this mode.
func (m BehaviorMode) PromptType() string {
	switch m {
	case ModeInternet:
		return "internet"
	case ModeAcademic:
		return "academic"
	default:
		return "chat"
	}
}

// UsesRetrieval reports whether sends under this mode run retrieval
// augmentation before generation.
func (m BehaviorMode) UsesRetrieval() bool {
	return m == ModeInternet || m == ModeAcademic
}

// SearchMode maps the behavior mode onto the retrieval mode it drives.
// Only meaningful when UsesRetrieval is true.
func (m BehaviorMode) SearchMode() model.SearchMode {
	if m == ModeAcademic {
		return model.SearchModeAcademic
	}
	return model.SearchModeGeneral
}

// SuggestionKind tags follow-up suggestions produced under this mode.
func (m BehaviorMode) SuggestionKind() model.SuggestionKind {
	if m.UsesRetrieval() {
		return model.SuggestionWeb
	}
	return model.SuggestionContext
}

// SystemPrompt returns the mode's system prompt, sent as the first
// outbound message of every generation under the mode.
func (m BehaviorMode) SystemPrompt() string {
	switch m {
	case ModeInternet:
		return "You are a helpful assistant with access to current web search results. " +
			"Ground your answer in the provided sources and cite them inline as [Title](URL). " +
			"If the sources do not cover the question, say so rather than guessing."
	case ModeAcademic:
		return "You are a research assistant with access to scholarly search results. " +
			"Ground your answer in the provided papers, cite them inline as [Title](URL), " +
			"and mention authors and publication year where available. " +
			"Distinguish established findings from open questions."
	default:
		return "You are a helpful assistant. Answer clearly and concisely, " +
			"using markdown formatting where it aids readability."
	}
}

// AllModes lists the behavior modes in UI order.
func AllModes() []BehaviorMode {
	return []BehaviorMode{ModeChat, ModeInternet, ModeAcademic}
}

// ModeFromName resolves a mode by display name, case-sensitive.
// Unknown names fall back to ModeChat.
func ModeFromName(name string) BehaviorMode {
	switch name {
	case "Internet", "internet":
		return ModeInternet
	case "Academic", "academic":
		return ModeAcademic
	default:
		return ModeChat
	}
}
