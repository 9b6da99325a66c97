package engine

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// duckduckgoRules targets the HTML (non-JS) results page, which renders the
// full result list server-side.
var duckduckgoRules = Rules{
	Ready:     "div.results",
	Container: "div.results",
	Item:      "div.result",
	Title:     "a.result__a",
	Link:      "a.result__a",
	Snippet:   "a.result__snippet",
	Skip:      []string{"div.result--ad"},
}

// DuckDuckGo searches duckduckgo.com/html.
type DuckDuckGo struct {
	adapter
}

func NewDuckDuckGo(navTimeout time.Duration, overrides Rules) *DuckDuckGo {
	return &DuckDuckGo{adapter{
		name:       "duckduckgo",
		rules:      duckduckgoRules.merged(overrides),
		navTimeout: navTimeout,
		cleanLink:  cleanDuckDuckGoURL,
	}}
}

// BuildTarget paginates with the s/dc offset parameters; each page holds ten
// results.
func (e *DuckDuckGo) BuildTarget(query string, page int) (string, error) {
	if err := validatePage(e.name, page); err != nil {
		return "", err
	}
	offset := (page - 1) * 10
	q := url.Values{}
	q.Set("q", query)
	q.Set("s", strconv.Itoa(offset))
	q.Set("o", "json")
	q.Set("dc", strconv.Itoa(offset+1))
	q.Set("api", "d.js")
	return "https://duckduckgo.com/html/?" + q.Encode(), nil
}

// cleanDuckDuckGoURL unwraps the duckduckgo.com/l/ redirect links the HTML
// page uses, recovering the real result URL from the uddg parameter.
func cleanDuckDuckGoURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//duckduckgo.com/l/") {
		raw = "https:" + raw
	}
	if !strings.Contains(raw, "duckduckgo.com/l/") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return raw
}
