package literature

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/research-lab/internal/types"
)

// googlePageSize is the maximum results per Custom Search request.
const googlePageSize = 10

// GoogleProvider searches for papers through the Google Custom Search
// API, restricted to arxiv.org. It is an alternative Searcher for
// environments where the arXiv API is unreachable.
type GoogleProvider struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleProvider creates a Custom Search backed provider.
func NewGoogleProvider(ctx context.Context, apiKey, cx string) (*GoogleProvider, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleProvider{svc: svc, cx: cx}, nil
}

// Search implements Searcher. Result snippets stand in for abstracts.
func (p *GoogleProvider) Search(ctx context.Context, query string, maxResults int) ([]types.PaperSummary, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	num := int64(maxResults)
	if num > googlePageSize {
		num = googlePageSize
	}

	q := fmt.Sprintf("site:arxiv.org %s", query)
	resp, err := p.svc.Cse.List().Context(ctx).Cx(p.cx).Q(q).Num(num).Do()
	if err != nil {
		return nil, &UnavailableError{Message: "custom search request failed", Cause: err}
	}

	papers := make([]types.PaperSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		papers = append(papers, types.PaperSummary{
			Title:           item.Title,
			Identifier:      item.Link,
			AbstractExcerpt: excerpt(item.Snippet),
		})
		if len(papers) == maxResults {
			break
		}
	}
	return papers, nil
}
