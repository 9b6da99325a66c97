package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"serpd/pkg/metrics"
)

// Pool failure sentinels.
var (
	// ErrPoolExhausted means no idle session became available within the
	// acquire timeout. Transient; safe to retry with backoff.
	ErrPoolExhausted = errors.New("browser pool exhausted")

	// ErrPoolClosed means the pool is shutting down and no longer serves
	// acquires.
	ErrPoolClosed = errors.New("browser pool closed")
)

// recycleBackoff spaces out replacement attempts after a start failure.
var recycleBackoff = 200 * time.Millisecond

// Factory starts one fresh browser session. The chromedp-backed factory lives
// in chrome.go; tests inject their own.
type Factory func(ctx context.Context) (*Session, error)

// PoolConfig bounds the pool.
type PoolConfig struct {
	Size           int
	AcquireTimeout time.Duration
}

// Pool owns a fixed set of browser sessions and lends them out one search at
// a time. Sessions move idle -> leased -> idle, or idle -> leased -> broken ->
// (recycle) -> idle. A broken session is torn down and replaced before it ever
// becomes acquirable again.
type Pool struct {
	factory Factory
	logger  *zap.Logger
	size    int
	timeout time.Duration

	idle chan *Session

	mu     sync.Mutex
	leased int
	broken int
	closed bool

	recycles sync.WaitGroup
}

// NewPool starts cfg.Size sessions eagerly and returns the pool. Starting
// browsers is the expensive part; paying it once here keeps acquire cheap.
func NewPool(ctx context.Context, cfg PoolConfig, factory Factory, logger *zap.Logger) (*Pool, error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", cfg.Size)
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 10 * time.Second
	}

	p := &Pool{
		factory: factory,
		logger:  logger,
		size:    cfg.Size,
		timeout: cfg.AcquireTimeout,
		idle:    make(chan *Session, cfg.Size),
	}

	for i := 0; i < cfg.Size; i++ {
		s, err := factory(ctx)
		if err != nil {
			p.drainIdle()
			return nil, fmt.Errorf("start session %d/%d: %w", i+1, cfg.Size, err)
		}
		p.idle <- s
		metrics.PoolIdle.Inc()
	}

	logger.Info("browser pool started", zap.Int("size", cfg.Size))
	return p, nil
}

// Acquire blocks until an idle session is available, the caller's ctx is
// done, or the pool's acquire timeout elapses. Waiting here never blocks
// other callers or the recycle work.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case s := <-p.idle:
		p.mu.Lock()
		if p.closed {
			// Shutdown won the race; hand the session back for draining.
			p.mu.Unlock()
			p.idle <- s
			return nil, ErrPoolClosed
		}
		p.leased++
		p.mu.Unlock()
		metrics.PoolIdle.Dec()
		metrics.PoolLeased.Inc()
		return s, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire: %w", ctx.Err())
	case <-timer.C:
		return nil, fmt.Errorf("acquire after %s: %w", p.timeout, ErrPoolExhausted)
	}
}

// Release hands a leased session back. A healthy session goes straight back
// to idle; an unhealthy one is marked broken and replaced asynchronously so a
// single crashed browser never poisons the rest of the pool.
func (p *Pool) Release(s *Session, healthy bool) {
	if s == nil {
		return
	}

	if healthy {
		// The session must be back in idle before the lease count drops:
		// Shutdown treats leased == 0 as "everything is in idle" and drains
		// it, so the reverse order would let a returning session slip past
		// the drain unclosed.
		p.idle <- s
		metrics.PoolIdle.Inc()
		p.mu.Lock()
		p.leased--
		p.mu.Unlock()
		metrics.PoolLeased.Dec()
		return
	}

	p.mu.Lock()
	p.leased--
	p.broken++
	p.mu.Unlock()
	metrics.PoolLeased.Dec()
	metrics.PoolBroken.Inc()

	p.logger.Warn("recycling broken session", zap.String("session_id", s.ID()))
	s.Close()

	p.recycles.Add(1)
	go p.recycle()
}

// recycle starts a replacement for one broken session and returns it to the
// idle set. On repeated start failures the slot stays vacant until shutdown;
// the pool keeps serving with reduced capacity rather than crash-looping.
func (p *Pool) recycle() {
	defer p.recycles.Done()

	const attempts = 3
	for i := 1; i <= attempts; i++ {
		p.mu.Lock()
		if p.closed {
			p.broken--
			p.mu.Unlock()
			metrics.PoolBroken.Dec()
			return
		}
		p.mu.Unlock()

		s, err := p.factory(context.Background())
		if err != nil {
			p.logger.Error("replacement session failed to start",
				zap.Int("attempt", i),
				zap.Error(err))
			time.Sleep(time.Duration(i) * recycleBackoff)
			continue
		}

		p.mu.Lock()
		p.broken--
		closed := p.closed
		p.mu.Unlock()
		metrics.PoolBroken.Dec()

		if closed {
			s.Close()
			return
		}
		p.idle <- s
		metrics.PoolIdle.Inc()
		p.logger.Info("session recycled", zap.String("session_id", s.ID()))
		return
	}

	p.mu.Lock()
	p.broken--
	p.mu.Unlock()
	metrics.PoolBroken.Dec()
	p.logger.Error("giving up on replacement session", zap.Int("attempts", attempts))
}

// Shutdown stops accepting acquires, waits for in-flight leases to come back
// (bounded by ctx), then tears down every session. Used only at process
// teardown.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			p.mu.Lock()
			idleLeases := p.leased
			p.mu.Unlock()
			if idleLeases == 0 {
				close(done)
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				close(done)
				return
			}
		}
	}()

	var drainErr error
	select {
	case <-done:
	case <-ctx.Done():
		drainErr = fmt.Errorf("pool drain: %w", ctx.Err())
	}

	p.recycles.Wait()
	p.drainIdle()
	p.logger.Info("browser pool shut down")
	return drainErr
}

// drainIdle closes every session currently in the idle channel.
func (p *Pool) drainIdle() {
	for {
		select {
		case s := <-p.idle:
			s.Close()
			metrics.PoolIdle.Dec()
		default:
			return
		}
	}
}
