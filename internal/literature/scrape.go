package literature

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/research-lab/internal/fetch"
	"github.com/jonathan/research-lab/internal/types"
)

// searchHTML scrapes the arXiv HTML search page. Used as a fallback when
// the Atom API response cannot be parsed as a feed. When the page comes
// back too thin over plain HTTP and browser fallback is enabled, it is
// re-rendered through a headless browser first.
func (c *ArxivClient) searchHTML(ctx context.Context, query string, maxResults int) ([]types.PaperSummary, error) {
	searchURL := fmt.Sprintf("%s?query=%s&searchtype=all&size=%d",
		c.opts.SearchBaseURL, url.QueryEscape(query), pageSize(maxResults))

	result, err := fetch.URL(ctx, searchURL, &fetch.Options{Timeout: c.opts.Timeout, UserAgent: fetch.DefaultUserAgent})
	if err != nil {
		return nil, &UnavailableError{Message: "arXiv search page request failed", Cause: err}
	}

	html := result.Body
	if c.opts.UseBrowser && fetch.ShouldUseBrowser(html) {
		rendered, berr := fetch.WithBrowser(ctx, searchURL, c.opts.Timeout, c.opts.Verbose)
		if berr == nil {
			html = rendered
		}
	}

	papers, err := parseSearchResults(html, maxResults)
	if err != nil {
		return nil, &UnavailableError{Message: "failed to parse arXiv search results", Cause: err}
	}
	return papers, nil
}

// parseSearchResults extracts paper summaries from the arXiv search
// results markup (li.arxiv-result entries).
func parseSearchResults(html string, maxResults int) ([]types.PaperSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var papers []types.PaperSummary
	doc.Find("li.arxiv-result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := fetch.CleanWhitespace(sel.Find("p.title").Text())
		if title == "" {
			return true
		}

		identifier, _ := sel.Find("p.list-title a").First().Attr("href")
		abstract := sel.Find("span.abstract-full").Text()
		if abstract == "" {
			abstract = sel.Find("p.abstract").Text()
		}

		papers = append(papers, types.PaperSummary{
			Title:           title,
			Identifier:      strings.TrimSpace(identifier),
			AbstractExcerpt: excerpt(abstract),
		})
		return len(papers) < maxResults
	})

	return papers, nil
}

// pageSize rounds the requested result count up to the nearest size the
// arXiv search page accepts (25, 50, 100, 200).
func pageSize(maxResults int) int {
	for _, size := range []int{25, 50, 100, 200} {
		if maxResults <= size {
			return size
		}
	}
	return 200
}
