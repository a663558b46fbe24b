// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/cortex-tui/internal/model"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config is the complete cortex configuration.
type Config struct {
	// Ollama configures the local model backend.
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Generation holds the default sampling parameters. New sessions
	// copy these; per-session overrides never write back here.
	Generation model.GenerationParams `toml:"generation" json:"generation"`

	// Search configures the retrieval providers.
	Search SearchConfig `toml:"search" json:"search"`

	// UI holds presentation preferences.
	UI UIConfig `toml:"ui" json:"ui"`

	// Storage configures the chat database.
	Storage StorageConfig `toml:"storage" json:"storage"`
}

// OllamaConfig configures the connection to the local Ollama server.
type OllamaConfig struct {
	// URL is the Ollama base URL.
	URL string `toml:"url" json:"url"`

	// Model is the default model for new sessions.
	Model string `toml:"model" json:"model"`

	// AutoStart launches the Ollama server if it is not running.
	AutoStart bool `toml:"auto_start" json:"auto_start"`

	// TimeoutSecs bounds non-streaming API requests.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// SearchConfig configures retrieval. Endpoint overrides exist mainly
// for air-gapped mirrors; leave them empty for the public services.
type SearchConfig struct {
	// Enabled gates the internet and academic modes entirely.
	Enabled bool `toml:"enabled" json:"enabled"`

	DuckDuckGoURL      string `toml:"duckduckgo_url" json:"duckduckgo_url,omitempty"`
	SemanticScholarURL string `toml:"semanticscholar_url" json:"semanticscholar_url,omitempty"`
	ArxivURL           string `toml:"arxiv_url" json:"arxiv_url,omitempty"`
	CrossrefURL        string `toml:"crossref_url" json:"crossref_url,omitempty"`

	// TimeoutSecs bounds each provider request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// UIConfig holds presentation preferences. The theme state is carried
// explicitly through the UI rather than read from a global.
type UIConfig struct {
	// Theme selects the color theme ("dark" or "light").
	Theme string `toml:"theme" json:"theme"`

	// ShowTokenRate displays tokens/sec after each response.
	ShowTokenRate bool `toml:"show_token_rate" json:"show_token_rate"`

	// ShowFollowUps displays suggested follow-up questions.
	ShowFollowUps bool `toml:"show_follow_ups" json:"show_follow_ups"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	// DatabasePath overrides the chat database location
	// (default: ~/.cortex/chats.db).
	DatabasePath string `toml:"database_path" json:"database_path,omitempty"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "",
			AutoStart:   true,
			TimeoutSecs: 30,
		},
		Generation: model.DefaultGenerationParams(),
		Search: SearchConfig{
			Enabled:     true,
			TimeoutSecs: 15,
		},
		UI: UIConfig{
			Theme:         "dark",
			ShowTokenRate: true,
			ShowFollowUps: true,
		},
		Storage: StorageConfig{},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the cortex configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cortex"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD
// =============================================================================

// Load loads configuration from the default config file. A missing
// file is not an error: defaults are returned. Missing fields are
// filled from defaults and the result is validated.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}

	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults and clamps
// the sampling parameters.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.TimeoutSecs <= 0 {
		cfg.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}

	if cfg.Generation.Temperature == 0 && cfg.Generation.TopP == 0 &&
		cfg.Generation.TopK == 0 && cfg.Generation.MaxTokens == 0 {
		cfg.Generation = defaults.Generation
	}
	cfg.Generation.Clamp()

	if cfg.Search.TimeoutSecs <= 0 {
		cfg.Search.TimeoutSecs = defaults.Search.TimeoutSecs
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific TOML file with
// 0600 permissions.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# cortex configuration file")
	fmt.Fprintln(file, "# Missing fields fall back to defaults.")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError reports a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects all validation failures.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !strings.HasPrefix(c.Ollama.URL, "http://") && !strings.HasPrefix(c.Ollama.URL, "https://") {
		errs = append(errs, ValidationError{
			Field:   "ollama.url",
			Message: "must be an http:// or https:// URL",
		})
	}

	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (expected dark or light)", c.UI.Theme),
		})
	}

	for _, endpoint := range []struct {
		field string
		value string
	}{
		{"search.duckduckgo_url", c.Search.DuckDuckGoURL},
		{"search.semanticscholar_url", c.Search.SemanticScholarURL},
		{"search.arxiv_url", c.Search.ArxivURL},
		{"search.crossref_url", c.Search.CrossrefURL},
	} {
		if endpoint.value == "" {
			continue
		}
		if !strings.HasPrefix(endpoint.value, "http://") && !strings.HasPrefix(endpoint.value, "https://") {
			errs = append(errs, ValidationError{
				Field:   endpoint.field,
				Message: "must be an http:// or https:// URL",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
