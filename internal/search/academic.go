// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// SEMANTIC SCHOLAR
// =============================================================================

type semanticScholarResponse struct {
	Data []semanticScholarPaper `json:"data"`
}

type semanticScholarPaper struct {
	Title       string `json:"title"`
	Abstract    string `json:"abstract"`
	URL         string `json:"url"`
	Year        int    `json:"year"`
	Authors     []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

func (s *Service) searchSemanticScholar(ctx context.Context, query string) ([]model.SearchResult, error) {
	reqURL := s.config.SemanticScholarURL +
		"?query=" + url.QueryEscape(query) +
		"&limit=" + strconv.Itoa(perProviderLimit) +
		"&fields=title,abstract,url,year,authors,externalIds"

	body, err := s.academicGet(ctx, "semanticscholar", reqURL)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var resp semanticScholarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SearchError{Provider: "semanticscholar", Message: "decode response", Cause: err}
	}

	var results []model.SearchResult
	for _, paper := range resp.Data {
		var authors []string
		for _, a := range paper.Authors {
			authors = append(authors, a.Name)
		}
		var publishDate string
		if paper.Year != 0 {
			publishDate = strconv.Itoa(paper.Year)
		}
		results = append(results, model.SearchResult{
			Title:       paper.Title,
			URL:         paper.URL,
			Snippet:     paper.Abstract,
			SourceType:  "academic",
			Authors:     authors,
			PublishDate: publishDate,
			DOI:         paper.ExternalIDs.DOI,
		})
	}
	return results, nil
}

// =============================================================================
// ARXIV
// =============================================================================

// arXiv answers with an Atom feed.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

func (s *Service) searchArxiv(ctx context.Context, query string) ([]model.SearchResult, error) {
	reqURL := s.config.ArxivURL +
		"?search_query=all:" + url.QueryEscape(query) +
		"&start=0&max_results=" + strconv.Itoa(perProviderLimit)

	body, err := s.academicGet(ctx, "arxiv", reqURL)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, &SearchError{Provider: "arxiv", Message: "decode feed", Cause: err}
	}

	var results []model.SearchResult
	for _, entry := range feed.Entries {
		var authors []string
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				authors = append(authors, name)
			}
		}
		// "2024-03-15T00:00:00Z" -> "2024-03-15"
		publishDate, _, _ := strings.Cut(strings.TrimSpace(entry.Published), "T")

		results = append(results, model.SearchResult{
			Title:       strings.Join(strings.Fields(entry.Title), " "),
			URL:         strings.TrimSpace(entry.ID),
			Snippet:     strings.TrimSpace(entry.Summary),
			SourceType:  "arxiv",
			Authors:     authors,
			PublishDate: publishDate,
		})
	}
	return results, nil
}

// =============================================================================
// CROSSREF
// =============================================================================

type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI      string   `json:"DOI"`
	Title    []string `json:"title"`
	Abstract string   `json:"abstract"`
	Author   []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	PublishedPrint struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"published-print"`
}

func (s *Service) searchCrossref(ctx context.Context, query string) ([]model.SearchResult, error) {
	reqURL := s.config.CrossrefURL +
		"?query=" + url.QueryEscape(query) +
		"&rows=" + strconv.Itoa(perProviderLimit) +
		"&select=DOI,title,abstract,author,published-print"

	body, err := s.academicGet(ctx, "crossref", reqURL)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var resp crossrefResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SearchError{Provider: "crossref", Message: "decode response", Cause: err}
	}

	var results []model.SearchResult
	for _, work := range resp.Message.Items {
		var title string
		if len(work.Title) > 0 {
			title = work.Title[0]
		}

		var authors []string
		for _, a := range work.Author {
			switch {
			case a.Given != "" && a.Family != "":
				authors = append(authors, a.Given+" "+a.Family)
			case a.Family != "":
				authors = append(authors, a.Family)
			case a.Given != "":
				authors = append(authors, a.Given)
			}
		}

		var publishDate string
		if parts := work.PublishedPrint.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
			publishDate = strconv.Itoa(parts[0][0])
		}

		results = append(results, model.SearchResult{
			Title:       title,
			URL:         "https://doi.org/" + work.DOI,
			Snippet:     work.Abstract,
			SourceType:  "crossref",
			Authors:     authors,
			PublishDate: publishDate,
			DOI:         work.DOI,
		})
	}
	return results, nil
}

// =============================================================================
// SHARED FETCH
// =============================================================================

// academicGet fetches a provider URL. A transport failure is an error;
// a non-200 status returns (nil, nil) so one degraded provider does
// not sink the whole merged search.
func (s *Service) academicGet(ctx context.Context, provider, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &SearchError{Provider: provider, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", academicUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &SearchError{Provider: provider, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &SearchError{Provider: provider, Message: "read body", Cause: err}
	}
	return body, nil
}
