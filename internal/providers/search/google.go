package search

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/yoockh/yoointerview/internal/models"
)

// Google queries a Programmable Search Engine.
type Google struct {
	svc *customsearch.Service
	cx  string
}

func NewGoogle(ctx context.Context, apiKey, cx string) (*Google, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("search: api key and engine id are required")
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Google{svc: svc, cx: cx}, nil
}

func (g *Google) Search(ctx context.Context, query string, n int) ([]models.Resource, error) {
	if n <= 0 || n > 10 {
		n = ResultsPerTopic
	}
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(int64(n)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	out := make([]models.Resource, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		out = append(out, models.Resource{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Snippet: strings.TrimSpace(item.Snippet),
		})
	}
	return out, nil
}
