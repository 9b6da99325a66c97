package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"serpd/browser"
)

// fakePool records lease activity so tests can assert the release contract.
type fakePool struct {
	acquires int
	releases []bool
	err      error
}

func (p *fakePool) Acquire(ctx context.Context) (*browser.Session, error) {
	p.acquires++
	if p.err != nil {
		return nil, p.err
	}
	return browser.NewSession(fmt.Sprintf("s%d", p.acquires), context.Background(), func() {}), nil
}

func (p *fakePool) Release(s *browser.Session, healthy bool) {
	p.releases = append(p.releases, healthy)
}

type fakeCache struct {
	stored map[string]*Response
	hits   int
}

func (c *fakeCache) key(engine, query string, page int) string {
	return fmt.Sprintf("%s|%s|%d", engine, query, page)
}

func (c *fakeCache) Get(engine, query string, page int) (*Response, bool) {
	resp, ok := c.stored[c.key(engine, query, page)]
	if ok {
		c.hits++
	}
	return resp, ok
}

func (c *fakeCache) Put(engine, query string, page int, resp *Response) {
	if c.stored == nil {
		c.stored = map[string]*Response{}
	}
	c.stored[c.key(engine, query, page)] = resp
}

func newTestSearcher(eng Engine, pool SessionPool, cache Cache) *Searcher {
	return NewSearcher(NewRegistry(eng), pool, cache, zap.NewNop())
}

func TestSearchReturnsHitsInAdapterOrder(t *testing.T) {
	hits := []Result{
		{Title: "first", Link: "https://a.example", Snippet: "one"},
		{Title: "second", Link: "https://b.example", Snippet: ""},
		{Title: "third", Link: "https://c.example", Snippet: "three"},
	}
	eng := &fakeEngine{name: "duckduckgo", target: "https://duckduckgo.com/html/?q=x", results: hits}
	pool := &fakePool{}

	resp, err := newTestSearcher(eng, pool, nil).Search(context.Background(), "duckduckgo", "rust programming", 1)
	require.NoError(t, err)

	assert.Equal(t, "duckduckgo", resp.Engine)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, hits, resp.Results)
	assert.Equal(t, []bool{true}, pool.releases, "successful search releases healthy")
}

func TestSearchEchoesRequestedPage(t *testing.T) {
	eng := &fakeEngine{name: "brave", target: "https://search.brave.com/search?q=x"}
	resp, err := newTestSearcher(eng, &fakePool{}, nil).Search(context.Background(), "brave", "go", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Page)
}

func TestSearchInvalidInputLeavesPoolUntouched(t *testing.T) {
	eng := &fakeEngine{name: "duckduckgo"}
	pool := &fakePool{}
	s := newTestSearcher(eng, pool, nil)

	_, err := s.Search(context.Background(), "duckduckgo", "", 1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = s.Search(context.Background(), "duckduckgo", "q", 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = s.Search(context.Background(), "duckduckgo", "   ", 1)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.Zero(t, pool.acquires, "no session may be acquired for invalid input")
}

func TestSearchUnknownEngineAcquiresNoSession(t *testing.T) {
	pool := &fakePool{}
	s := newTestSearcher(&fakeEngine{name: "duckduckgo"}, pool, nil)

	_, err := s.Search(context.Background(), "unknown-engine", "q", 1)
	assert.True(t, errors.Is(err, ErrUnknownEngine))
	assert.Zero(t, pool.acquires)
}

func TestSearchReleasesUnhealthyOnExtractionFailure(t *testing.T) {
	eng := &fakeEngine{
		name:   "duckduckgo",
		target: "https://duckduckgo.com/html/?q=x",
		extErr: fmt.Errorf("container missing: %w", ErrExtractionFailed),
	}
	pool := &fakePool{}

	_, err := newTestSearcher(eng, pool, nil).Search(context.Background(), "duckduckgo", "q", 1)
	assert.True(t, errors.Is(err, ErrExtractionFailed))
	assert.Equal(t, []bool{false}, pool.releases, "extraction failure must recycle the session")
}

func TestSearchReleasesUnhealthyOnNavigationTimeout(t *testing.T) {
	eng := &fakeEngine{
		name:   "yahoo",
		target: "https://search.yahoo.com/search?q=x",
		navErr: fmt.Errorf("results not ready: %w", ErrNavigationTimeout),
	}
	pool := &fakePool{}

	_, err := newTestSearcher(eng, pool, nil).Search(context.Background(), "yahoo", "q", 1)
	assert.True(t, errors.Is(err, ErrNavigationTimeout))
	assert.Equal(t, []bool{false}, pool.releases)
}

func TestSearchPropagatesPoolExhaustion(t *testing.T) {
	eng := &fakeEngine{name: "ask", target: "https://www.ask.com/web?q=x"}
	pool := &fakePool{err: browser.ErrPoolExhausted}

	_, err := newTestSearcher(eng, pool, nil).Search(context.Background(), "ask", "q", 1)
	assert.True(t, errors.Is(err, browser.ErrPoolExhausted))
	assert.Empty(t, pool.releases, "nothing to release when acquire failed")
}

// stuckEngine hangs in Navigate until the caller's context is done, the way a
// real adapter does when the target never reaches readiness.
type stuckEngine struct {
	fakeEngine
}

func (e *stuckEngine) Navigate(ctx context.Context, s *browser.Session, target string) error {
	<-ctx.Done()
	return fmt.Errorf("navigate: %w", ctx.Err())
}

func TestSearchCancelledCallerReleasesUnhealthy(t *testing.T) {
	eng := &stuckEngine{fakeEngine{name: "duckduckgo", target: "https://duckduckgo.com/html/?q=x"}}
	pool := &fakePool{}
	s := newTestSearcher(eng, pool, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Search(ctx, "duckduckgo", "q", 1)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, pool.acquires)
	assert.Equal(t, []bool{false}, pool.releases,
		"a lease held at cancellation must still come back, unhealthy")
}

func TestSearchZeroResultsIsNotAnError(t *testing.T) {
	eng := &fakeEngine{name: "brave", target: "https://search.brave.com/search?q=x", results: nil}
	resp, err := newTestSearcher(eng, &fakePool{}, nil).Search(context.Background(), "brave", "obscure", 1)
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
}

func TestSearchCacheHitSkipsPool(t *testing.T) {
	eng := &fakeEngine{name: "duckduckgo", target: "https://duckduckgo.com/html/?q=x",
		results: []Result{{Title: "t", Link: "https://x.example"}}}
	pool := &fakePool{}
	cache := &fakeCache{}
	s := newTestSearcher(eng, pool, cache)

	first, err := s.Search(context.Background(), "duckduckgo", "q", 1)
	require.NoError(t, err)

	second, err := s.Search(context.Background(), "duckduckgo", "q", 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, pool.acquires, "second call must be served from cache")
	assert.Equal(t, 1, cache.hits)
}
