package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serpd/search"
)

func TestBuildTargetEncodesQueryAndPage(t *testing.T) {
	timeout := 10 * time.Second

	tests := []struct {
		name   string
		engine search.Engine
		query  string
		page   int
		want   string
	}{
		{
			name:   "duckduckgo first page",
			engine: NewDuckDuckGo(timeout, Rules{}),
			query:  "rust programming",
			page:   1,
			want:   "https://duckduckgo.com/html/?api=d.js&dc=1&o=json&q=rust+programming&s=0",
		},
		{
			name:   "duckduckgo offsets by ten per page",
			engine: NewDuckDuckGo(timeout, Rules{}),
			query:  "go",
			page:   3,
			want:   "https://duckduckgo.com/html/?api=d.js&dc=21&o=json&q=go&s=20",
		},
		{
			name:   "brave zero-based offset",
			engine: NewBrave(timeout, Rules{}),
			query:  "kubernetes operators",
			page:   2,
			want:   "https://search.brave.com/search?offset=1&q=kubernetes+operators",
		},
		{
			name:   "ask passes the page through",
			engine: NewAsk(timeout, Rules{}),
			query:  "c++ templates",
			page:   4,
			want:   "https://www.ask.com/web?page=4&q=c%2B%2B+templates",
		},
		{
			name:   "yahoo seven results per page",
			engine: NewYahoo(timeout, Rules{}),
			query:  "zap logger",
			page:   3,
			want:   "https://search.yahoo.com/search?b=15&q=zap+logger",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.engine.BuildTarget(tc.query, tc.page)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuildTargetRejectsPageBelowOne(t *testing.T) {
	timeout := 10 * time.Second
	engines := []search.Engine{
		NewDuckDuckGo(timeout, Rules{}),
		NewBrave(timeout, Rules{}),
		NewAsk(timeout, Rules{}),
		NewYahoo(timeout, Rules{}),
	}

	for _, eng := range engines {
		t.Run(eng.Name(), func(t *testing.T) {
			for _, page := range []int{0, -1} {
				_, err := eng.BuildTarget("query", page)
				assert.True(t, errors.Is(err, search.ErrInvalidInput), "page %d", page)
			}
		})
	}
}

func TestBuildTargetDeterministic(t *testing.T) {
	eng := NewDuckDuckGo(10*time.Second, Rules{})
	a, err := eng.BuildTarget("same query", 2)
	require.NoError(t, err)
	b, err := eng.BuildTarget("same query", 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCleanDuckDuckGoURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "redirect link unwrapped",
			in:   "//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.rust-lang.org%2F&rut=abc",
			want: "https://www.rust-lang.org/",
		},
		{
			name: "absolute redirect link unwrapped",
			in:   "https://duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F",
			want: "https://go.dev/doc/",
		},
		{
			name: "direct link untouched",
			in:   "https://example.com/page",
			want: "https://example.com/page",
		},
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
		{
			name: "redirect without uddg kept as-is",
			in:   "https://duckduckgo.com/l/?rut=abc",
			want: "https://duckduckgo.com/l/?rut=abc",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cleanDuckDuckGoURL(tc.in))
		})
	}
}
