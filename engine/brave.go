package engine

import (
	"net/url"
	"strconv"
	"time"
)

var braveRules = Rules{
	Ready:     "#results",
	Container: "#results",
	Item:      "div.result-content",
	Title:     "div.title",
	Link:      "a",
	Snippet:   "div.content",
}

// Brave searches search.brave.com.
type Brave struct {
	adapter
}

func NewBrave(navTimeout time.Duration, overrides Rules) *Brave {
	return &Brave{adapter{
		name:       "brave",
		rules:      braveRules.merged(overrides),
		navTimeout: navTimeout,
	}}
}

// BuildTarget paginates with a zero-based offset parameter.
func (e *Brave) BuildTarget(query string, page int) (string, error) {
	if err := validatePage(e.name, page); err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("offset", strconv.Itoa(page-1))
	return "https://search.brave.com/search?" + q.Encode(), nil
}
