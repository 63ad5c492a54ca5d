// Package gsearch implements recipient search over the Google Custom Search API.
package gsearch

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/mail-agent/internal/recipient"
)

const maxResults = 10

// New creates a Client authenticated with an API key and scoped to a
// programmable search engine.
func New(apiKey, engineID string) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
	}
}

// Client calls the Custom Search JSON API. It satisfies recipient.Searcher.
type Client struct {
	apiKey   string
	engineID string
}

// Search runs one query and returns title/link/snippet triples.
func (c *Client) Search(ctx context.Context, query string) ([]recipient.SearchResult, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("customsearch.NewService failed: %w", err)
	}

	call := svc.Cse.List().
		Cx(c.engineID).
		Q(query).
		Num(maxResults).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("cse.List failed: %w", err)
	}

	results := make([]recipient.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, recipient.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	return results, nil
}
