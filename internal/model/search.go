// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SEARCH RESULT
// =============================================================================

// SearchMode selects which retrieval providers serve a query.
type SearchMode string

const (
	SearchModeGeneral  SearchMode = "general"
	SearchModeAcademic SearchMode = "academic"
)

// SearchResult is a single retrieval hit from a search provider.
// Academic providers fill the optional fields when available.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`

	// SourceType identifies the provider kind: "academic", "arxiv",
	// "crossref", or empty for general web results.
	SourceType string `json:"source_type,omitempty"`

	// Academic metadata, present when the provider supplies it.
	Authors     []string `json:"authors,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
	DOI         string   `json:"doi,omitempty"`
}

// IsAcademic reports whether the result came from an academic source.
func (r *SearchResult) IsAcademic() bool {
	return r.SourceType != ""
}

// =============================================================================
// FOLLOW-UP SUGGESTION
// =============================================================================

// SuggestionKind classifies a follow-up suggestion by the mode that
// produced it.
type SuggestionKind string

const (
	SuggestionWeb     SuggestionKind = "web"
	SuggestionContext SuggestionKind = "context"
)

// FollowUpSuggestion is a short candidate next-question offered to the
// user after a completed response. Ephemeral: replaced or cleared on
// the next user input or generation start.
type FollowUpSuggestion struct {
	Text string         `json:"text"`
	Kind SuggestionKind `json:"kind"`
}
