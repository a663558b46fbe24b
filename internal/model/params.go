// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// GENERATION PARAMETERS
// =============================================================================

// GenerationParams holds the sampling parameters for one generation
// request. Sessions copy these from the active configuration at send
// time; the copy is what travels with the request.
type GenerationParams struct {
	Temperature   float64 `json:"temperature" toml:"temperature"`
	TopP          float64 `json:"top_p" toml:"top_p"`
	TopK          int     `json:"top_k" toml:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty" toml:"repeat_penalty"`
	MaxTokens     int     `json:"max_tokens" toml:"max_tokens"`
}

// DefaultGenerationParams returns the default sampling parameters.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:   0.8,
		TopP:          0.9,
		TopK:          40,
		RepeatPenalty: 1.1,
		MaxTokens:     2048,
	}
}

// Clamp normalizes out-of-range values to sane bounds.
func (p *GenerationParams) Clamp() {
	if p.Temperature < 0 {
		p.Temperature = 0
	}
	if p.Temperature > 2 {
		p.Temperature = 2
	}
	if p.TopP < 0 {
		p.TopP = 0
	}
	if p.TopP > 1 {
		p.TopP = 1
	}
	if p.TopK < 0 {
		p.TopK = 0
	}
	if p.RepeatPenalty < 0 {
		p.RepeatPenalty = 0
	}
	if p.MaxTokens < 0 {
		p.MaxTokens = 0
	}
}
