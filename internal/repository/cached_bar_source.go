package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
)

// CachedBarSource serves daily history from cache and falls back to the
// wrapped source on a miss or a cache failure.
type CachedBarSource struct {
	src      domrepo.BarSource
	cache    cache.Service
	ttl      time.Duration
	rng      string
	interval string
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

// NewCachedBarSource decorates src. rng and interval only feed the key.
func NewCachedBarSource(src domrepo.BarSource, c cache.Service, ttl time.Duration, rng, interval string) *CachedBarSource {
	return &CachedBarSource{src: src, cache: c, ttl: ttl, rng: rng, interval: interval, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CachedBarSource) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SetMetrics records hit/miss counts on m.
func (s *CachedBarSource) SetMetrics(m domrepo.Metrics) { s.metrics = m }

// Key returns the cache key for symbol.
func (s *CachedBarSource) Key(symbol string) string {
	return cache.GenerateKeyWithParams("bars", strings.ToUpper(symbol), s.rng, s.interval)
}

func (s *CachedBarSource) FetchDaily(ctx context.Context, symbol string) (*models.History, error) {
	key := s.Key(symbol)

	var h models.History
	err := s.cache.Get(ctx, key, &h)
	switch {
	case err == nil && len(h.Bars) > 0:
		s.lookup(true)
		s.l.Debug("bar cache hit", applogger.String("key", key), applogger.Int("bars", len(h.Bars)))
		return &h, nil
	case err != nil && !errors.Is(err, cache.ErrCacheMiss):
		s.l.Warn("bar cache get failed", applogger.String("key", key), applogger.Error(err))
	}
	s.lookup(false)

	fresh, err := s.src.FetchDaily(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// empty histories are never cached
	if len(fresh.Bars) > 0 {
		if err := s.cache.Set(ctx, key, fresh, s.ttl); err != nil {
			s.l.Warn("bar cache set failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return fresh, nil
}

func (s *CachedBarSource) lookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}
