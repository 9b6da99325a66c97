package engine

import (
	"net/url"
	"strconv"
	"time"
)

// yahooRules includes the cookie-consent reject button; the banner covers the
// results on first visit from a fresh browser profile.
var yahooRules = Rules{
	Ready:     "#web",
	Container: "#web",
	Item:      "div.algo",
	Title:     "h3",
	Link:      "a",
	Snippet:   "div.compText",
	Consent:   "button.reject-all",
}

// Yahoo searches search.yahoo.com.
type Yahoo struct {
	adapter
}

func NewYahoo(navTimeout time.Duration, overrides Rules) *Yahoo {
	return &Yahoo{adapter{
		name:       "yahoo",
		rules:      yahooRules.merged(overrides),
		navTimeout: navTimeout,
	}}
}

// BuildTarget paginates with the b parameter: seven organic results per page,
// 1-based start position.
func (e *Yahoo) BuildTarget(query string, page int) (string, error) {
	if err := validatePage(e.name, page); err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("b", strconv.Itoa((page-1)*7+1))
	return "https://search.yahoo.com/search?" + q.Encode(), nil
}
