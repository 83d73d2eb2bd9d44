package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_PaperPrompt(t *testing.T) {
	prompt, err := Get("paper.json", "write_paper")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Domain}}")
	assert.Contains(t, prompt, "{{.TargetWords}}")
	assert.Contains(t, prompt, "{{.Hypothesis}}")
}

func TestGet_MissingKey(t *testing.T) {
	_, err := Get("paper.json", "does_not_exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get("nope.json", "anything")
	require.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() { MustGet("paper.json", "missing") })
	assert.NotPanics(t, func() { MustGet("paper.json", "write_paper") })
}

func TestFormat(t *testing.T) {
	result := Format("Hello {{.Name}}, target {{.Words}} words", map[string]string{
		"Name":  "world",
		"Words": "2500",
	})
	assert.Equal(t, "Hello world, target 2500 words", result)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	result := Format("keep {{.Unknown}}", map[string]string{"Other": "x"})
	assert.Equal(t, "keep {{.Unknown}}", result)
}
