package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// stealthScript is installed on every new document before any page script
// runs, hiding the usual headless-Chrome fingerprints search engines key on.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined,
});
Object.defineProperty(navigator, 'plugins', {
	get: () => [1, 2, 3, 4, 5],
});
Object.defineProperty(navigator, 'languages', {
	get: () => ['en-US', 'en'],
});
window.chrome = { runtime: {} };
Object.defineProperty(navigator, 'permissions', {
	get: () => ({
		query: () => Promise.resolve({ state: 'prompt' }),
	}),
});
`

// ChromeConfig configures the shared Chrome process allocator.
type ChromeConfig struct {
	Headless     bool
	ProxyURL     string
	UserAgent    string
	StartTimeout time.Duration
}

// Chrome owns the exec allocator all pooled sessions share. One Chrome
// process hosts many tabs; each Session is one tab.
type Chrome struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
	startWait   time.Duration
}

// NewChrome builds the allocator with the anti-automation flags the target
// engines are known to check for.
func NewChrome(cfg ChromeConfig, logger *zap.Logger) *Chrome {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	startWait := cfg.StartTimeout
	if startWait <= 0 {
		startWait = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(ua),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("accept-language", "en-US,en;q=0.9"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-extensions", ""),
	)
	if cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Chrome{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
		startWait:   startWait,
	}
}

// NewSession opens a fresh tab and waits until its CDP session is live. This
// is the Factory the pool runs at startup and on every recycle.
func (c *Chrome) NewSession(ctx context.Context) (*Session, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx)

	// chromedp binds the CDP session to the context given to the first Run,
	// so the tab context itself must not carry a deadline. Bound the wait
	// from outside instead.
	startDone := make(chan error, 1)
	go func() {
		startDone <- chromedp.Run(tabCtx,
			chromedp.ActionFunc(func(actx context.Context) error {
				_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(actx)
				return err
			}),
		)
	}()

	select {
	case err := <-startDone:
		if err != nil {
			tabCancel()
			return nil, fmt.Errorf("start tab: %w", err)
		}
	case <-time.After(c.startWait):
		tabCancel()
		return nil, fmt.Errorf("start tab: timed out after %s", c.startWait)
	case <-ctx.Done():
		tabCancel()
		return nil, fmt.Errorf("start tab: %w", ctx.Err())
	}

	id := uuid.NewString()
	c.logger.Debug("browser session started", zap.String("session_id", id))
	return NewSession(id, tabCtx, tabCancel), nil
}

// Close tears down the allocator and with it any remaining tabs.
func (c *Chrome) Close() {
	c.allocCancel()
	c.logger.Info("chrome allocator closed")
}
