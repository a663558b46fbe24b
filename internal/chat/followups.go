// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// FOLLOW-UP EXTRACTION
// =============================================================================

// maxFollowUps caps how many suggestions a single completion yields.
const maxFollowUps = 3

// ExtractFollowUps scans the tail of a completed response for a
// follow-up suggestion block and returns the candidate questions tagged
// with kind. The response text itself is left untouched: committed
// content always equals exactly what streamed, suggestions are a
// read-only overlay.
//
// A block is a trailing header line mentioning "follow-up" and ending
// with a colon, followed by bullet or numbered list items. Anything
// else returns nil.
func ExtractFollowUps(content string, kind model.SuggestionKind) []model.FollowUpSuggestion {
	lines := strings.Split(strings.TrimRight(content, "\n \t"), "\n")

	headerIdx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if isFollowUpHeader(line) {
			headerIdx = i
			break
		}
		if !isListItem(line) {
			// Non-list text above the tail means there is no trailing
			// block to extract.
			return nil
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var out []model.FollowUpSuggestion
	for _, line := range lines[headerIdx+1:] {
		text := stripListMarker(strings.TrimSpace(line))
		if text == "" {
			continue
		}
		out = append(out, model.FollowUpSuggestion{Text: text, Kind: kind})
		if len(out) == maxFollowUps {
			break
		}
	}
	return out
}

func isFollowUpHeader(line string) bool {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "follow-up") && !strings.Contains(lower, "follow up") {
		return false
	}
	lower = strings.TrimRight(lower, "*_ ")
	return strings.HasSuffix(lower, ":")
}

func isListItem(line string) bool {
	return stripListMarker(line) != line
}

// stripListMarker removes a leading bullet ("-", "*", "•") or a
// numbered-list prefix ("1.", "2)"). Returns the line unchanged when no
// marker is present.
func stripListMarker(line string) string {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	// Numbered form: digits then "." or ")" then space.
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line)-1 && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:])
	}
	return line
}
