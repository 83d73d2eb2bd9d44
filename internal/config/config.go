// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Run parameters
	Domain     string `json:"domain,omitempty"`      // Research domain to investigate
	OutputDir  string `json:"output_dir,omitempty"`  // Base directory for run artifacts
	MaxResults int    `json:"max_results,omitempty" validate:"gte=0,lte=200"` // Literature search result cap
	MinWords   int    `json:"min_words,omitempty" validate:"gte=0"`           // Paper word count lower bound
	MaxWords   int    `json:"max_words,omitempty" validate:"gte=0"`           // Paper word count upper bound

	// Behavior
	Retries        int    `json:"retries,omitempty" validate:"gte=0,lte=10"`                       // Extra attempts for transient failures
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" validate:"gte=0"`                      // Per-generation timeout
	Seed           int64  `json:"seed,omitempty"`                                                  // Simulation seed (0 uses the default)
	SearchProvider string `json:"search_provider,omitempty" validate:"omitempty,oneof=arxiv google"` // Literature backend
	UseBrowser     bool   `json:"use_browser,omitempty"`                                           // Use headless browser for scrape fallback
	Verbose        bool   `json:"verbose,omitempty"`                                               // Print detailed stage output

	// Credentials
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.MinWords > 0 && c.MaxWords > 0 && c.MaxWords < c.MinWords {
		return fmt.Errorf("config error: 'max_words' must be at least 'min_words'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Domain == "" {
		result.Domain = defaults.Domain
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.SearchProvider == "" {
		result.SearchProvider = defaults.SearchProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.MaxResults == 0 {
		result.MaxResults = defaults.MaxResults
	}
	if result.MinWords == 0 {
		result.MinWords = defaults.MinWords
	}
	if result.MaxWords == 0 {
		result.MaxWords = defaults.MaxWords
	}
	if result.Retries == 0 {
		result.Retries = defaults.Retries
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}

	// Bool fields: true wins (flags can only turn behavior on)
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
