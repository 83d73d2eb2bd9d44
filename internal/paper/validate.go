package paper

import (
	"regexp"
	"strings"

	"github.com/jonathan/research-lab/internal/types"
)

// citationRe matches numbered citation markers like [1] or [42].
var citationRe = regexp.MustCompile(`\[\d+\]`)

// countWords approximates the word count of the generated text.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// countCitations counts distinct citation markers in the text.
func countCitations(text string) int {
	seen := make(map[string]bool)
	for _, marker := range citationRe.FindAllString(text, -1) {
		seen[marker] = true
	}
	return len(seen)
}

// extractTitle returns the first '# ' heading, or the first non-empty
// line when the draft has no title heading.
func extractTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title)
		}
		return line
	}
	return ""
}

// sectionBoundaries locates each '## ' section heading and its byte
// offset in the full text, in document order.
func sectionBoundaries(text string) []types.SectionBoundary {
	var boundaries []types.SectionBoundary
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(trimmed, "## "); ok {
			boundaries = append(boundaries, types.SectionBoundary{
				SectionName: strings.TrimSpace(name),
				StartOffset: offset,
			})
		}
		offset += len(line)
	}
	return boundaries
}
