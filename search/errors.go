package search

import "errors"

// Failure sentinels raised by the search core. The transport layer maps each
// one to a stable status code with errors.Is; nothing in between reinterprets
// them.
var (
	// ErrInvalidInput marks a bad query or page number. Client error, never
	// retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownEngine marks a lookup for an engine name that was never
	// registered.
	ErrUnknownEngine = errors.New("unknown engine")

	// ErrNavigationTimeout marks an engine page that did not reach its
	// readiness signal within the configured bound. Transient; the engine may
	// be rate-limiting.
	ErrNavigationTimeout = errors.New("navigation timeout")

	// ErrExtractionFailed marks a page where the expected results container
	// was not found at all. Usually markup drift; the adapter's rules need
	// updating. Zero results inside a present container is not this error.
	ErrExtractionFailed = errors.New("extraction failed")
)

// ErrorLabel returns a short stable label for metrics, one per failure kind.
func ErrorLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUnknownEngine):
		return "unknown_engine"
	case errors.Is(err, ErrNavigationTimeout):
		return "navigation_timeout"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction_failed"
	default:
		return "error"
	}
}
