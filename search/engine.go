package search

import (
	"context"

	"serpd/browser"
)

// Engine is the capability set every search engine adapter implements.
// Adapters are stateless: all per-search state lives in the borrowed session,
// and retry policy belongs to the caller, never to the adapter.
type Engine interface {
	// Name returns the engine identifier used by the registry and the API.
	Name() string

	// BuildTarget maps a non-empty query and a 1-based page number to the
	// engine's results-page URL. The query is URL-encoded. Fails with
	// ErrInvalidInput for page < 1.
	BuildTarget(query string, page int) (string, error)

	// Navigate drives the session to the target URL and waits, within a
	// bounded time, for the engine's readiness signal. Consent interstitials
	// are dismissed before the signal is evaluated. Fails with
	// ErrNavigationTimeout when the signal never appears.
	Navigate(ctx context.Context, session *browser.Session, target string) error

	// Extract reads the loaded page and produces hits in document order.
	// A missing snippet becomes an empty string; non-result markup is
	// skipped. Fails with ErrExtractionFailed when the results container is
	// absent. An empty slice with a nil error means zero results.
	Extract(ctx context.Context, session *browser.Session) ([]Result, error)
}
