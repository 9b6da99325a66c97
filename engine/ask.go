package engine

import (
	"net/url"
	"strconv"
	"time"
)

var askRules = Rules{
	Ready:     "div.results",
	Container: "div.results",
	Item:      "div.result",
	Title:     "div.result-title",
	Link:      "a.result-title-link",
	Snippet:   "p.result-abstract",
}

// Ask searches ask.com.
type Ask struct {
	adapter
}

func NewAsk(navTimeout time.Duration, overrides Rules) *Ask {
	return &Ask{adapter{
		name:       "ask",
		rules:      askRules.merged(overrides),
		navTimeout: navTimeout,
	}}
}

// BuildTarget uses ask.com's 1-based page parameter directly.
func (e *Ask) BuildTarget(query string, page int) (string, error) {
	if err := validatePage(e.name, page); err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	return "https://www.ask.com/web?" + q.Encode(), nil
}
