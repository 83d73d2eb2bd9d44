package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"domain": "Quantum Machine Learning",
		"output_dir": "output",
		"max_results": 10,
		"min_words": 2500,
		"max_words": 3000,
		"retries": 2,
		"timeout_seconds": 60,
		"search_provider": "arxiv",
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Quantum Machine Learning", cfg.Domain)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, 2500, cfg.MinWords)
	assert.Equal(t, 3000, cfg.MaxWords)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
	assert.Equal(t, "arxiv", cfg.SearchProvider)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty config", Config{}, false},
		{"valid", Config{MaxResults: 10, MinWords: 2500, MaxWords: 3000, Retries: 2, SearchProvider: "arxiv"}, false},
		{"google provider", Config{SearchProvider: "google"}, false},
		{"unknown provider", Config{SearchProvider: "bing"}, true},
		{"negative retries", Config{Retries: -1}, true},
		{"too many retries", Config{Retries: 11}, true},
		{"max results over cap", Config{MaxResults: 500}, true},
		{"words range inverted", Config{MinWords: 3000, MaxWords: 2500}, true},
		{"max words alone", Config{MaxWords: 2800}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	flags := Config{Domain: "biology", Retries: 1, Verbose: true}
	defaults := Config{
		Domain:         "ignored",
		OutputDir:      "output",
		MaxResults:     10,
		MinWords:       2500,
		MaxWords:       3000,
		Retries:        2,
		TimeoutSeconds: 60,
		SearchProvider: "arxiv",
		APIKey:         "file-key",
		UseBrowser:     true,
	}

	merged := flags.MergeWithDefaults(defaults)

	assert.Equal(t, "biology", merged.Domain, "explicit value wins")
	assert.Equal(t, "output", merged.OutputDir)
	assert.Equal(t, 10, merged.MaxResults)
	assert.Equal(t, 1, merged.Retries, "explicit value wins")
	assert.Equal(t, 60, merged.TimeoutSeconds)
	assert.Equal(t, "arxiv", merged.SearchProvider)
	assert.Equal(t, "file-key", merged.APIKey)
	assert.True(t, merged.UseBrowser)
	assert.True(t, merged.Verbose)
}
