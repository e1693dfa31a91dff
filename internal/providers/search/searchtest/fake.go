// Package searchtest provides scriptable search fakes.
package searchtest

import (
	"context"
	"sync"

	"github.com/yoockh/yoointerview/internal/models"
)

// Searcher records queries and delegates to SearchFunc.
type Searcher struct {
	SearchFunc func(ctx context.Context, query string, n int) ([]models.Resource, error)

	mu      sync.Mutex
	queries []string
}

func (s *Searcher) Search(ctx context.Context, query string, n int) ([]models.Resource, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.SearchFunc == nil {
		return nil, nil
	}
	return s.SearchFunc(ctx, query, n)
}

func (s *Searcher) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Enricher delegates to EnrichFunc.
type Enricher struct {
	EnrichFunc func(ctx context.Context, topics []string) ([]models.Resource, error)

	mu    sync.Mutex
	calls int
}

func (e *Enricher) Enrich(ctx context.Context, topics []string) ([]models.Resource, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.EnrichFunc == nil {
		return []models.Resource{}, nil
	}
	return e.EnrichFunc(ctx, topics)
}

func (e *Enricher) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
