package search

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/yoointerview/internal/cache"
	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/models"
)

const DefaultCacheTTL = 24 * time.Hour

type cachedSearcher struct {
	next   Searcher
	cache  cache.Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// WithCache caches per-query results. Cache errors are logged and bypassed.
func WithCache(next Searcher, c cache.Cache, ttl time.Duration, l *logrus.Logger) Searcher {
	if c == nil {
		return next
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if l == nil {
		l = logger.Discard()
	}
	return &cachedSearcher{next: next, cache: c, ttl: ttl, logger: l}
}

func (s *cachedSearcher) Search(ctx context.Context, query string, n int) ([]models.Resource, error) {
	key := cache.Key("search", query)

	var cached []models.Resource
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("search cache read failed")
	}
	if hit {
		return cached, nil
	}

	res, err := s.next.Search(ctx, query, n)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, res, s.ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("search cache write failed")
	}
	return res, nil
}
