// Package search finds learning resources for coaching topics.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yoockh/yoointerview/internal/models"
)

const (
	ResultsPerTopic = 3
	maxParallel     = 3
)

var ErrNoResults = errors.New("search: every topic query failed")

// Searcher runs one web query.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]models.Resource, error)
}

// Enricher turns coaching topics into a deduplicated resource list.
type Enricher interface {
	Enrich(ctx context.Context, topics []string) ([]models.Resource, error)
}

type enricher struct {
	s Searcher
}

func NewEnricher(s Searcher) Enricher {
	return &enricher{s: s}
}

// Enrich queries every topic and merges results in topic order, dropping
// repeated URLs. A topic that fails is skipped; the call fails only when
// every topic failed.
func (e *enricher) Enrich(ctx context.Context, topics []string) ([]models.Resource, error) {
	if len(topics) == 0 {
		return []models.Resource{}, nil
	}

	results := make([][]models.Resource, len(topics))
	var (
		mu       sync.Mutex
		failures int
		lastErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, topic := range topics {
		g.Go(func() error {
			res, err := e.s.Search(gctx, topic, ResultsPerTopic)
			if err != nil {
				mu.Lock()
				failures++
				lastErr = err
				mu.Unlock()
				return nil
			}
			for j := range res {
				res[j].Topic = topic
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failures == len(topics) {
		return nil, errors.Join(ErrNoResults, lastErr)
	}

	seen := map[string]bool{}
	out := []models.Resource{}
	for _, res := range results {
		for _, r := range res {
			key := strings.TrimRight(strings.TrimSpace(r.URL), "/")
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	return out, nil
}
