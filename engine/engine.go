// Package engine holds one adapter per supported search engine. Adapters map
// a query to the engine's results URL, drive a borrowed browser session to it,
// and extract hits from the rendered markup.
package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"gopkg.in/yaml.v3"

	"serpd/browser"
	"serpd/search"
)

// consentWait bounds the optional consent-banner dismissal. The banner either
// shows up quickly or not at all.
const consentWait = 3 * time.Second

// Rules are the engine-specific selectors. Target markup drifts over time, so
// these are data, overridable per engine from a YAML file, rather than code.
type Rules struct {
	Ready     string   `yaml:"ready"`     // readiness signal awaited after navigation
	Container string   `yaml:"container"` // results container; absent means extraction failure
	Item      string   `yaml:"item"`      // one organic result within the container
	Title     string   `yaml:"title"`     // title element within an item
	Link      string   `yaml:"link"`      // anchor carrying the result URL
	Snippet   string   `yaml:"snippet"`   // optional snippet element
	Skip      []string `yaml:"skip"`      // item selectors for ads and widgets
	Consent   string   `yaml:"consent"`   // optional consent-reject button
}

// merged returns r with every non-zero field of o applied on top.
func (r Rules) merged(o Rules) Rules {
	if o.Ready != "" {
		r.Ready = o.Ready
	}
	if o.Container != "" {
		r.Container = o.Container
	}
	if o.Item != "" {
		r.Item = o.Item
	}
	if o.Title != "" {
		r.Title = o.Title
	}
	if o.Link != "" {
		r.Link = o.Link
	}
	if o.Snippet != "" {
		r.Snippet = o.Snippet
	}
	if len(o.Skip) > 0 {
		r.Skip = o.Skip
	}
	if o.Consent != "" {
		r.Consent = o.Consent
	}
	return r
}

// LoadRules reads per-engine rule overrides keyed by engine name.
func LoadRules(path string) (map[string]Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	overrides := make(map[string]Rules)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	return overrides, nil
}

// adapter carries the behavior shared by every engine: bounded navigation
// with consent handling, then selector-driven extraction of the rendered DOM.
type adapter struct {
	name       string
	rules      Rules
	navTimeout time.Duration
	cleanLink  func(string) string
}

func (a *adapter) Name() string { return a.name }

// Navigate loads the target and waits for the engine's readiness selector.
// The whole span is bounded by the configured navigation timeout.
func (a *adapter) Navigate(ctx context.Context, session *browser.Session, target string) error {
	tctx, cancel := session.ActionContext(ctx, a.navTimeout)
	defer cancel()

	if err := chromedp.Run(tctx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("%s: navigate: %w: %v", a.name, search.ErrNavigationTimeout, err)
	}

	a.dismissConsent(tctx)

	if err := chromedp.Run(tctx,
		chromedp.WaitVisible(a.rules.Ready, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("%s: waiting for %q: %w: %v",
			a.name, a.rules.Ready, search.ErrNavigationTimeout, err)
	}
	return nil
}

// dismissConsent clicks the engine's consent-reject button if one shows up.
// The banner blocks the results container, so this runs before the readiness
// wait. Absence of the banner is the common case and not an error.
func (a *adapter) dismissConsent(ctx context.Context) {
	if a.rules.Consent == "" {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, consentWait)
	defer cancel()
	_ = chromedp.Run(cctx,
		chromedp.WaitVisible(a.rules.Consent, chromedp.ByQuery),
		chromedp.Click(a.rules.Consent, chromedp.ByQuery),
	)
}

// Extract reads the rendered document out of the session and parses it.
func (a *adapter) Extract(ctx context.Context, session *browser.Session) ([]search.Result, error) {
	tctx, cancel := session.ActionContext(ctx, a.navTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(tctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("%s: read page: %w: %v", a.name, search.ErrExtractionFailed, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%s: parse page: %w: %v", a.name, search.ErrExtractionFailed, err)
	}
	return a.parse(doc)
}

// parse walks the results container in document order. Items matching a skip
// rule (ads, related-searches widgets) are dropped; items without a title or
// link are garbled markup and dropped too; a missing snippet keeps the hit.
func (a *adapter) parse(doc *goquery.Document) ([]search.Result, error) {
	container := doc.Find(a.rules.Container)
	if container.Length() == 0 {
		return nil, fmt.Errorf("%s: results container %q not found: %w",
			a.name, a.rules.Container, search.ErrExtractionFailed)
	}

	var results []search.Result
	container.Find(a.rules.Item).Each(func(_ int, item *goquery.Selection) {
		for _, skip := range a.rules.Skip {
			if item.Is(skip) {
				return
			}
		}

		title := strings.TrimSpace(item.Find(a.rules.Title).First().Text())
		link, _ := item.Find(a.rules.Link).First().Attr("href")
		if title == "" || link == "" {
			return
		}
		if a.cleanLink != nil {
			link = a.cleanLink(link)
		}
		snippet := strings.TrimSpace(item.Find(a.rules.Snippet).First().Text())

		results = append(results, search.Result{Title: title, Link: link, Snippet: snippet})
	})
	return results, nil
}

// validatePage rejects page numbers below 1 before any URL is built.
func validatePage(name string, page int) error {
	if page < 1 {
		return fmt.Errorf("%s: page %d: %w", name, page, search.ErrInvalidInput)
	}
	return nil
}
