// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"strings"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// RETRIEVAL AUGMENTER
// =============================================================================

// Searcher is the query contract the augmenter builds on.
type Searcher interface {
	Search(ctx context.Context, query string, mode model.SearchMode) ([]model.SearchResult, error)
}

// Augmenter synthesizes a retrieval-context prompt from search
// results.
type Augmenter struct {
	searcher Searcher
}

// NewAugmenter wraps a searcher.
func NewAugmenter(searcher Searcher) *Augmenter {
	return &Augmenter{searcher: searcher}
}

// Augment runs the query and renders the results as a single context
// prompt with [Title](URL) citations. A search failure propagates to
// the caller; an empty result set is a successful augmentation that
// says so, so the model does not hallucinate sources.
func (a *Augmenter) Augment(ctx context.Context, query string, mode model.SearchMode) (string, error) {
	results, err := a.searcher.Search(ctx, query, mode)
	if err != nil {
		return "", err
	}
	return RenderContext(query, mode, results), nil
}

// RenderContext formats results into the mode-specific context prompt.
func RenderContext(query string, mode model.SearchMode, results []model.SearchResult) string {
	var sb strings.Builder

	if mode == model.SearchModeAcademic {
		sb.WriteString("The following scholarly sources were retrieved for the question ")
		sb.WriteString(`"` + query + `". `)
		sb.WriteString("Base your answer on them, cite each source you use inline as [Title](URL), ")
		sb.WriteString("and mention authors and publication year where given.\n\n")
	} else {
		sb.WriteString("The following web search results were retrieved for the question ")
		sb.WriteString(`"` + query + `". `)
		sb.WriteString("Base your answer on them and cite each source you use inline as [Title](URL).\n\n")
	}

	if len(results) == 0 {
		sb.WriteString("No results were found. Say so explicitly and answer from general knowledge, ")
		sb.WriteString("clearly marked as unsourced.")
		return sb.String()
	}

	sb.WriteString("Sources:\n")
	for _, r := range results {
		sb.WriteString("\n- [" + r.Title + "](" + r.URL + ")\n")
		if len(r.Authors) > 0 {
			sb.WriteString("  Authors: " + strings.Join(r.Authors, ", ") + "\n")
		}
		if r.PublishDate != "" {
			sb.WriteString("  Published: " + r.PublishDate + "\n")
		}
		if r.DOI != "" {
			sb.WriteString("  DOI: " + r.DOI + "\n")
		}
		if r.Snippet != "" {
			sb.WriteString("  " + r.Snippet + "\n")
		}
	}

	return sb.String()
}
