// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search implements web and academic retrieval.
//
// General mode scrapes the DuckDuckGo HTML endpoint and keeps the top
// five results. Academic mode fans out to Semantic Scholar, arXiv, and
// Crossref concurrently, merges the results newest first, deduplicates
// by DOI, and keeps the top ten. Each provider is rate limited
// independently.
//
// The Augmenter turns a result set into a single context prompt with
// machine-readable [Title](URL) citations, phrased per search mode.
package search
