// Package literature provides the external literature search collaborators.
// The primary implementation queries the arXiv Atom API; a scraping
// fallback parses the arXiv HTML search page, and an alternative provider
// uses Google Custom Search restricted to arxiv.org.
package literature

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/research-lab/internal/fetch"
	"github.com/jonathan/research-lab/internal/types"
)

// AbstractExcerptLength bounds abstract excerpts carried through the
// pipeline, matching the summaries used to derive the research gap.
const AbstractExcerptLength = 300

// Searcher is the external literature search collaborator: given a
// domain query it returns an ordered sequence of paper summaries.
// An empty result is a valid outcome; only service failures error.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.PaperSummary, error)
}

// ArxivOptions configures the arXiv client.
type ArxivOptions struct {
	// APIBaseURL is the Atom API endpoint. Overridable for tests.
	APIBaseURL string
	// SearchBaseURL is the HTML search page used as a scraping fallback
	// when the API response cannot be parsed. Overridable for tests.
	SearchBaseURL string
	Timeout       time.Duration
	UseBrowser    bool
	Verbose       bool
}

// DefaultArxivOptions returns the production endpoints and timeout.
func DefaultArxivOptions() *ArxivOptions {
	return &ArxivOptions{
		APIBaseURL:    "https://export.arxiv.org/api/query",
		SearchBaseURL: "https://arxiv.org/search/",
		Timeout:       fetch.DefaultTimeout,
	}
}

// ArxivClient searches arXiv for papers relevant to a research domain.
type ArxivClient struct {
	opts *ArxivOptions
}

// NewArxivClient creates an arXiv search client. A nil opts uses defaults.
func NewArxivClient(opts *ArxivOptions) *ArxivClient {
	if opts == nil {
		opts = DefaultArxivOptions()
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = DefaultArxivOptions().APIBaseURL
	}
	if opts.SearchBaseURL == "" {
		opts.SearchBaseURL = DefaultArxivOptions().SearchBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = fetch.DefaultTimeout
	}
	return &ArxivClient{opts: opts}
}

// atomFeed models the subset of the arXiv Atom response we consume.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID      string `xml:"id"`
	Title   string `xml:"title"`
	Summary string `xml:"summary"`
}

// Search queries the arXiv Atom API, falling back to scraping the HTML
// search page when the API returns a response that is not a feed.
// Network failures and non-success statuses surface as *UnavailableError.
func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]types.PaperSummary, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	apiURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=relevance",
		c.opts.APIBaseURL, url.QueryEscape(query), maxResults)

	result, err := fetch.URL(ctx, apiURL, &fetch.Options{Timeout: c.opts.Timeout, UserAgent: fetch.DefaultUserAgent})
	if err != nil {
		return nil, &UnavailableError{Message: "arXiv API request failed", Cause: err}
	}

	var feed atomFeed
	if err := xml.Unmarshal([]byte(result.Body), &feed); err != nil {
		// Not a feed; the API occasionally serves an HTML error page.
		// Try the HTML search page before giving up.
		return c.searchHTML(ctx, query, maxResults)
	}

	papers := make([]types.PaperSummary, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, types.PaperSummary{
			Title:           fetch.CleanWhitespace(entry.Title),
			Identifier:      strings.TrimSpace(entry.ID),
			AbstractExcerpt: excerpt(entry.Summary),
		})
		if len(papers) == maxResults {
			break
		}
	}
	return papers, nil
}

// excerpt normalizes and truncates an abstract.
func excerpt(abstract string) string {
	cleaned := fetch.CleanWhitespace(abstract)
	if len(cleaned) > AbstractExcerptLength {
		cleaned = cleaned[:AbstractExcerptLength]
	}
	return cleaned
}
