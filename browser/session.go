package browser

import (
	"context"
	"time"
)

// Session is a leased handle to one live browser tab. The pool owns it;
// callers borrow it for the scope of a single search and hand it back through
// Pool.Release on every exit path.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession wraps a tab context and its cancel function. The context must
// already be runnable by chromedp (or a stand-in for tests).
func NewSession(id string, ctx context.Context, cancel context.CancelFunc) *Session {
	return &Session{id: id, ctx: ctx, cancel: cancel}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Context returns the tab context chromedp actions run against.
func (s *Session) Context() context.Context { return s.ctx }

// ActionContext derives a context for one browser action from the tab
// context, bounded by d and additionally canceled when the caller's ctx is.
// chromedp binds its CDP session to the tab context, so actions must derive
// from it rather than from the request context directly.
func (s *Session) ActionContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(s.ctx, d)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

// Close tears down the tab. Only the pool calls this.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
