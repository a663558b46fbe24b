// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// SearchError represents a retrieval failure. An empty successful
// result set is not an error.
type SearchError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *SearchError) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// SERVICE
// =============================================================================

// perProviderLimit caps how many results each provider contributes
// before merging.
const perProviderLimit = 5

// generalResultLimit caps general web results.
const generalResultLimit = 5

// academicResultLimit caps merged academic results.
const academicResultLimit = 10

// userAgent identifies general web requests. The DuckDuckGo HTML
// endpoint rejects obviously non-browser agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// academicUserAgent identifies requests to the scholarly APIs, which
// ask for an honest descriptive agent.
const academicUserAgent = "cortex-tui research assistant (academic search)"

// ServiceConfig holds provider endpoints, overridable for tests.
type ServiceConfig struct {
	DuckDuckGoURL      string
	SemanticScholarURL string
	ArxivURL           string
	CrossrefURL        string

	// Timeout bounds each provider request (default: 15s).
	Timeout time.Duration
}

// DefaultServiceConfig returns the production endpoints.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		DuckDuckGoURL:      "https://html.duckduckgo.com/html/",
		SemanticScholarURL: "https://api.semanticscholar.org/graph/v1/paper/search",
		ArxivURL:           "http://export.arxiv.org/api/query",
		CrossrefURL:        "https://api.crossref.org/works",
		Timeout:            15 * time.Second,
	}
}

// Service performs retrieval queries. Safe for concurrent use.
type Service struct {
	config     *ServiceConfig
	httpClient *http.Client

	// Per-provider limiters keep bursts of sends polite to the free
	// upstream APIs.
	webLimiter      *rate.Limiter
	academicLimiter *rate.Limiter
}

// NewService creates a search service.
func NewService(config *ServiceConfig) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	return &Service{
		config:          config,
		httpClient:      &http.Client{Timeout: config.Timeout},
		webLimiter:      rate.NewLimiter(rate.Every(time.Second), 2),
		academicLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Search runs a query in the given mode. General mode returns the top
// web results; academic mode fans out to all scholarly providers and
// merges. Returns a SearchError on transport failure; zero results
// with a nil error is a legitimate outcome.
func (s *Service) Search(ctx context.Context, query string, mode model.SearchMode) ([]model.SearchResult, error) {
	if mode == model.SearchModeAcademic {
		return s.searchAcademic(ctx, query)
	}
	return s.searchGeneral(ctx, query)
}

// searchAcademic queries Semantic Scholar, arXiv, and Crossref
// concurrently and merges: newest first, DOI-deduplicated, capped. One
// failing provider degrades the merge; the search errors only when
// every provider fails.
func (s *Service) searchAcademic(ctx context.Context, query string) ([]model.SearchResult, error) {
	if err := s.academicLimiter.Wait(ctx); err != nil {
		return nil, &SearchError{Message: "rate limit wait", Cause: err}
	}

	providers := []func(context.Context, string) ([]model.SearchResult, error){
		s.searchSemanticScholar,
		s.searchArxiv,
		s.searchCrossref,
	}
	perProvider := make([][]model.SearchResult, len(providers))
	perErr := make([]error, len(providers))

	// The goroutines never return an error: a provider failure must not
	// cancel its siblings, only the parent ctx does that.
	var g errgroup.Group
	for i, provider := range providers {
		g.Go(func() error {
			perProvider[i], perErr[i] = provider(ctx, query)
			return nil
		})
	}
	g.Wait()

	var merged []model.SearchResult
	var failures []error
	for i := range providers {
		if perErr[i] != nil {
			failures = append(failures, perErr[i])
			continue
		}
		merged = append(merged, perProvider[i]...)
	}
	if len(failures) == len(providers) {
		return nil, &SearchError{Message: "all academic providers failed", Cause: errors.Join(failures...)}
	}

	return mergeAcademic(merged), nil
}

// mergeAcademic sorts newest first, drops adjacent DOI duplicates, and
// truncates to the academic cap. Publish dates compare as strings:
// they are either bare years or ISO dates, both of which order
// lexicographically.
func mergeAcademic(results []model.SearchResult) []model.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PublishDate > results[j].PublishDate
	})

	out := results[:0]
	for i, r := range results {
		if i > 0 {
			prev := out[len(out)-1]
			if r.DOI != "" && prev.DOI != "" && r.DOI == prev.DOI {
				continue
			}
		}
		out = append(out, r)
	}

	if len(out) > academicResultLimit {
		out = out[:academicResultLimit]
	}
	return out
}
