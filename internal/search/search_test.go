// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// DUCKDUCKGO PARSER
// =============================================================================

const ddgFixture = `
<div class="result results_links results_links_deep web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fblog%2F&amp;rut=abc">The Go <b>Blog</b></a>
  </h2>
  <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fblog%2F">Official <b>Go</b> project news &amp; articles.</a>
</div>
<div class="result results_links results_links_deep web-result">
  <h2 class="result__title">
    <a rel="nofollow" class="result__a" href="https://go.dev/doc/">Go Documentation</a>
  </h2>
  <a class="result__snippet" href="https://go.dev/doc/">Learn how to use Go.</a>
</div>
`

func TestParseDuckDuckGoHTML(t *testing.T) {
	results := parseDuckDuckGoHTML(ddgFixture)
	if len(results) != 2 {
		t.Fatalf("parsed %d results, want 2", len(results))
	}

	first := results[0]
	if first.Title != "The Go Blog" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://go.dev/blog/" {
		t.Errorf("redirect not unwrapped: %q", first.URL)
	}
	if first.Snippet != "Official Go project news & articles." {
		t.Errorf("snippet = %q", first.Snippet)
	}

	if results[1].URL != "https://go.dev/doc/" {
		t.Errorf("direct URL mangled: %q", results[1].URL)
	}
}

func TestParseDuckDuckGoHTMLEmptyPage(t *testing.T) {
	if got := parseDuckDuckGoHTML("<html><body>No results.</body></html>"); len(got) != 0 {
		t.Errorf("parsed %d results from empty page", len(got))
	}
}

// =============================================================================
// ACADEMIC MERGE
// =============================================================================

func TestMergeAcademicSortsNewestFirst(t *testing.T) {
	merged := mergeAcademic([]model.SearchResult{
		{Title: "old", PublishDate: "2019"},
		{Title: "new", PublishDate: "2024-06-01"},
		{Title: "mid", PublishDate: "2022"},
	})
	if merged[0].Title != "new" || merged[2].Title != "old" {
		t.Errorf("order = %v", []string{merged[0].Title, merged[1].Title, merged[2].Title})
	}
}

func TestMergeAcademicDedupsByDOI(t *testing.T) {
	merged := mergeAcademic([]model.SearchResult{
		{Title: "a", DOI: "10.1/x", PublishDate: "2024"},
		{Title: "b", DOI: "10.1/x", PublishDate: "2024"},
		{Title: "c", DOI: "", PublishDate: "2024"},
		{Title: "d", DOI: "", PublishDate: "2024"},
	})
	// Same DOI collapses; results without DOI never collapse.
	var dois int
	for _, r := range merged {
		if r.DOI == "10.1/x" {
			dois++
		}
	}
	if dois != 1 {
		t.Errorf("DOI duplicate survived merge: %d", dois)
	}
	if len(merged) != 3 {
		t.Errorf("len = %d, want 3", len(merged))
	}
}

func TestMergeAcademicTruncates(t *testing.T) {
	var many []model.SearchResult
	for i := 0; i < 15; i++ {
		many = append(many, model.SearchResult{Title: "p", PublishDate: "2024"})
	}
	if got := len(mergeAcademic(many)); got != academicResultLimit {
		t.Errorf("len = %d, want %d", got, academicResultLimit)
	}
}

// =============================================================================
// PROVIDER END-TO-END
// =============================================================================

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <title>Attention Is
      Still All You Need</title>
    <summary>  We revisit attention.  </summary>
    <published>2024-01-02T00:00:00Z</published>
    <author><name>A. Researcher</name></author>
    <author><name>B. Scholar</name></author>
  </entry>
</feed>`

func TestAcademicSearchMergesProviders(t *testing.T) {
	semantic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"title":"Deep Paper","abstract":"About depth.","url":"https://s2.org/p1","year":2023,"authors":[{"name":"C. Deep"}],"externalIds":{"DOI":"10.5/deep"}}]}`))
	}))
	defer semantic.Close()

	arxiv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivFixture))
	}))
	defer arxiv.Close()

	crossref := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"items":[{"DOI":"10.5/deep","title":["Deep Paper (Print)"],"abstract":"dup","author":[{"given":"C","family":"Deep"}],"published-print":{"date-parts":[[2023]]}}]}}`))
	}))
	defer crossref.Close()

	svc := NewService(&ServiceConfig{
		SemanticScholarURL: semantic.URL,
		ArxivURL:           arxiv.URL,
		CrossrefURL:        crossref.URL,
		DuckDuckGoURL:      "http://127.0.0.1:0",
	})

	results, err := svc.Search(context.Background(), "attention", model.SearchModeAcademic)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	// Two distinct works: the arXiv entry plus one of the two
	// DOI-identical records.
	if len(results) != 2 {
		t.Fatalf("merged %d results, want 2: %+v", len(results), results)
	}
	if results[0].SourceType != "arxiv" {
		t.Errorf("newest-first ordering broken: %+v", results[0])
	}
	if results[0].Title != "Attention Is Still All You Need" {
		t.Errorf("arXiv title whitespace not normalized: %q", results[0].Title)
	}
	if results[0].PublishDate != "2024-01-02" {
		t.Errorf("arXiv date = %q", results[0].PublishDate)
	}
	if len(results[0].Authors) != 2 {
		t.Errorf("authors = %v", results[0].Authors)
	}
}

func TestAcademicSearchToleratesDegradedProvider(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"title":"Only Paper","year":2024,"authors":[]}]}`))
	}))
	defer okServer.Close()

	brokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer brokenServer.Close()

	svc := NewService(&ServiceConfig{
		SemanticScholarURL: okServer.URL,
		ArxivURL:           brokenServer.URL,
		CrossrefURL:        brokenServer.URL,
		DuckDuckGoURL:      "http://127.0.0.1:0",
	})

	results, err := svc.Search(context.Background(), "q", model.SearchModeAcademic)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Title != "Only Paper" {
		t.Errorf("results = %+v", results)
	}
}

func TestAcademicSearchToleratesDeadProvider(t *testing.T) {
	semantic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"title":"Survivor A","year":2024,"authors":[]}]}`))
	}))
	defer semantic.Close()

	arxiv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed><entry><id>https://arxiv.org/abs/1</id><title>Survivor B</title>` +
			`<summary>s</summary><published>2023-01-01T00:00:00Z</published></entry></feed>`))
	}))
	defer arxiv.Close()

	// Connection refused, not an HTTP error status.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	svc := NewService(&ServiceConfig{
		SemanticScholarURL: semantic.URL,
		ArxivURL:           arxiv.URL,
		CrossrefURL:        deadURL,
		DuckDuckGoURL:      deadURL,
	})

	results, err := svc.Search(context.Background(), "q", model.SearchModeAcademic)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want the two healthy providers merged", results)
	}
}

func TestAcademicSearchTransportFailureIsError(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	svc := NewService(&ServiceConfig{
		SemanticScholarURL: deadURL,
		ArxivURL:           deadURL,
		CrossrefURL:        deadURL,
		DuckDuckGoURL:      deadURL,
	})

	if _, err := svc.Search(context.Background(), "q", model.SearchModeAcademic); err == nil {
		t.Error("expected transport error")
	}
}

func TestGeneralSearchCapsResults(t *testing.T) {
	var blocks strings.Builder
	for i := 0; i < 8; i++ {
		blocks.WriteString(`<a class="result__a" href="https://example.org/p">Result</a>` + "\n")
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go generics" {
			t.Errorf("query = %q", got)
		}
		w.Write([]byte(blocks.String()))
	}))
	defer server.Close()

	svc := NewService(&ServiceConfig{
		DuckDuckGoURL:      server.URL,
		SemanticScholarURL: server.URL,
		ArxivURL:           server.URL,
		CrossrefURL:        server.URL,
	})

	results, err := svc.Search(context.Background(), "go generics", model.SearchModeGeneral)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != generalResultLimit {
		t.Errorf("len = %d, want %d", len(results), generalResultLimit)
	}
}

// =============================================================================
// AUGMENTER
// =============================================================================

type stubSearcher struct {
	results []model.SearchResult
	err     error
}

func (s *stubSearcher) Search(context.Context, string, model.SearchMode) ([]model.SearchResult, error) {
	return s.results, s.err
}

func TestAugmentRendersCitations(t *testing.T) {
	aug := NewAugmenter(&stubSearcher{results: []model.SearchResult{
		{
			Title:       "Paper One",
			URL:         "https://doi.org/10.1/one",
			Snippet:     "An abstract.",
			Authors:     []string{"A. Author", "B. Author"},
			PublishDate: "2023",
			DOI:         "10.1/one",
		},
	}})

	prompt, err := aug.Augment(context.Background(), "my question", model.SearchModeAcademic)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}

	for _, want := range []string{
		"[Paper One](https://doi.org/10.1/one)",
		"A. Author, B. Author",
		"2023",
		"10.1/one",
		"An abstract.",
		`"my question"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAugmentEmptyResultsIsSuccess(t *testing.T) {
	aug := NewAugmenter(&stubSearcher{})
	prompt, err := aug.Augment(context.Background(), "q", model.SearchModeGeneral)
	if err != nil {
		t.Fatalf("Augment() error = %v", err)
	}
	if !strings.Contains(prompt, "No results were found") {
		t.Errorf("empty-result prompt = %q", prompt)
	}
}

func TestAugmentPropagatesSearchFailure(t *testing.T) {
	aug := NewAugmenter(&stubSearcher{err: &SearchError{Message: "offline"}})
	if _, err := aug.Augment(context.Background(), "q", model.SearchModeGeneral); err == nil {
		t.Error("expected search failure to propagate")
	}
}
