// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// GENERAL WEB SEARCH (DUCKDUCKGO HTML)
// =============================================================================

// The HTML endpoint serves stable class names: each hit is a .result
// block with a .result__a title anchor and a .result__snippet body.
var (
	ddgAnchorRe  = regexp.MustCompile(`(?s)<a[^>]+class="[^"]*result__a[^"]*"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	ddgSnippetRe = regexp.MustCompile(`(?s)<a[^>]+class="[^"]*result__snippet[^"]*"[^>]*>(.*?)</a>|<td[^>]+class="[^"]*result__snippet[^"]*"[^>]*>(.*?)</td>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
)

// searchGeneral scrapes the DuckDuckGo HTML endpoint and returns the
// top results.
func (s *Service) searchGeneral(ctx context.Context, query string) ([]model.SearchResult, error) {
	if err := s.webLimiter.Wait(ctx); err != nil {
		return nil, &SearchError{Message: "rate limit wait", Cause: err}
	}

	reqURL := s.config.DuckDuckGoURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &SearchError{Provider: "duckduckgo", Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &SearchError{Provider: "duckduckgo", Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SearchError{Provider: "duckduckgo", Message: "unexpected status " + resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &SearchError{Provider: "duckduckgo", Message: "read body", Cause: err}
	}

	results := parseDuckDuckGoHTML(string(body))
	if len(results) > generalResultLimit {
		results = results[:generalResultLimit]
	}
	return results, nil
}

// parseDuckDuckGoHTML extracts title/url/snippet triples from the HTML
// endpoint's markup. Anchor and snippet lists are zipped by position;
// a missing snippet leaves the field empty rather than dropping the
// hit.
func parseDuckDuckGoHTML(page string) []model.SearchResult {
	anchors := ddgAnchorRe.FindAllStringSubmatch(page, -1)
	snippets := ddgSnippetRe.FindAllStringSubmatch(page, -1)

	var results []model.SearchResult
	for i, anchor := range anchors {
		rawURL := html.UnescapeString(anchor[1])
		title := cleanHTMLText(anchor[2])
		if title == "" || rawURL == "" {
			continue
		}

		snippet := ""
		if i < len(snippets) {
			text := snippets[i][1]
			if text == "" {
				text = snippets[i][2]
			}
			snippet = cleanHTMLText(text)
		}

		results = append(results, model.SearchResult{
			Title:   title,
			URL:     resolveDuckDuckGoURL(rawURL),
			Snippet: snippet,
		})
	}
	return results
}

// resolveDuckDuckGoURL unwraps the endpoint's redirect links
// (//duckduckgo.com/l/?uddg=<target>) to the real destination.
func resolveDuckDuckGoURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	if parsed.Scheme == "" && strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	return raw
}

// cleanHTMLText strips tags, unescapes entities, and collapses
// whitespace.
func cleanHTMLText(fragment string) string {
	text := htmlTagRe.ReplaceAllString(fragment, "")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
