package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"serpd/browser"
	"serpd/pkg/metrics"
)

// SessionPool is the slice of the browser pool the orchestrator needs.
type SessionPool interface {
	Acquire(ctx context.Context) (*browser.Session, error)
	Release(s *browser.Session, healthy bool)
}

// Cache is an optional result cache keyed by (engine, query, page). Lookups
// and stores are best effort; a failing cache never fails a search.
type Cache interface {
	Get(engine, query string, page int) (*Response, bool)
	Put(engine, query string, page int, resp *Response)
}

// Searcher is the façade over the registry, the session pool, and the engine
// adapters. One call performs exactly one search against one engine.
type Searcher struct {
	registry *Registry
	pool     SessionPool
	cache    Cache
	logger   *zap.Logger
}

// NewSearcher wires the orchestrator. cache may be nil.
func NewSearcher(registry *Registry, pool SessionPool, cache Cache, logger *zap.Logger) *Searcher {
	return &Searcher{registry: registry, pool: pool, cache: cache, logger: logger}
}

// Engines lists the registered engine names in registration order.
func (s *Searcher) Engines() []string {
	return s.registry.Engines()
}

// Search runs one search: validate, resolve, acquire a session, navigate,
// extract, release. The session is released exactly once on every exit path;
// navigation and extraction failures release it unhealthy so the pool
// recycles the browser. No retry happens here.
func (s *Searcher) Search(ctx context.Context, engineName, query string, page int) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", ErrInvalidInput)
	}
	if page < 1 {
		return nil, fmt.Errorf("page %d: %w", page, ErrInvalidInput)
	}

	eng, err := s.registry.Resolve(engineName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if resp, ok := s.cache.Get(engineName, query, page); ok {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return resp, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	target, err := eng.BuildTarget(query, page)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.searchWithSession(ctx, eng, target, engineName, query, page)
	metrics.SearchDuration.WithLabelValues(engineName).Observe(time.Since(start).Seconds())
	metrics.SearchesTotal.WithLabelValues(engineName, statusLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(engineName, query, page, resp)
	}
	return resp, nil
}

// searchWithSession holds the session lease for the navigate/extract span.
func (s *Searcher) searchWithSession(ctx context.Context, eng Engine, target, engineName, query string, page int) (*Response, error) {
	session, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	// Released exactly once, even on panic or caller cancellation. Healthy
	// stays false until extraction succeeds, so any failure in between
	// conservatively recycles the browser.
	healthy := false
	defer func() {
		s.pool.Release(session, healthy)
	}()

	log := s.logger.With(
		zap.String("engine", engineName),
		zap.String("session_id", session.ID()),
		zap.Int("page", page),
	)
	log.Info("starting search", zap.String("query", query))

	if err := eng.Navigate(ctx, session, target); err != nil {
		log.Warn("navigation failed", zap.String("target", target), zap.Error(err))
		return nil, err
	}

	results, err := eng.Extract(ctx, session)
	if err != nil {
		log.Warn("extraction failed", zap.Error(err))
		return nil, err
	}

	healthy = true
	if results == nil {
		// Zero results is a valid outcome; serialize it as an empty list.
		results = []Result{}
	}
	log.Info("search finished", zap.Int("results", len(results)))
	return &Response{Engine: engineName, Results: results, Page: page}, nil
}

func statusLabel(err error) string {
	if errors.Is(err, browser.ErrPoolExhausted) {
		return "pool_exhausted"
	}
	return ErrorLabel(err)
}
