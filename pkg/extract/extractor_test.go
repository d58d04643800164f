package extract

import (
	"io"
	"net/url"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/id88/urlspider/pkg/filter"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestExtractor(t *testing.T, opts filter.Options) *Extractor {
	t.Helper()
	f, err := filter.New(opts, testLogger())
	require.NoError(t, err)
	return New(f, testLogger())
}

const samplePage = `<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="/assets/site.css">
<style>.hero { background: url('/img/hero.png'); }</style>
</head>
<body>
<a href="/about">About</a>
<a href="/about">About again</a>
<a href="javascript:void(0)">noop</a>
<a href="#section">anchor</a>
<img src="https://cdn.example.com/logo.png" alt="logo">
<img data-src="/img/lazy.jpg">
<form action="/search"></form>
<script src="/js/app.js"></script>
<script>
fetch("/api/users");
window.location = "/dashboard";
</script>
</body>
</html>`

func TestFromMarkup(t *testing.T) {
	e := newTestExtractor(t, filter.Options{Domain: "example.com", IncludeSubdomains: true})
	base, _ := url.Parse("https://example.com/")

	urls := e.FromMarkup(samplePage, base)

	expected := []string{
		"https://example.com/about",
		"https://example.com/assets/site.css",
		"https://example.com/img/hero.png",
		"https://example.com/img/lazy.jpg",
		"https://example.com/search",
		"https://example.com/js/app.js",
		"https://example.com/api/users",
		"https://example.com/dashboard",
		"https://cdn.example.com/logo.png",
		"https://example.com/favicon.ico",
	}
	for _, want := range expected {
		assert.Contains(t, urls, want)
	}

	for _, u := range urls {
		assert.NotContains(t, u, "javascript:")
		assert.NotContains(t, u, "#")
	}

	// Duplicated anchor emitted once
	seen := make(map[string]int)
	for _, u := range urls {
		seen[u]++
	}
	assert.Equal(t, 1, seen["https://example.com/about"])

	// Output is sorted
	assert.True(t, sort.StringsAreSorted(urls))
}

func TestFromMarkupEmittedOnce(t *testing.T) {
	e := newTestExtractor(t, filter.Options{Domain: "example.com", IncludeSubdomains: true})
	base, _ := url.Parse("https://example.com/")

	first := e.FromMarkup(samplePage, base)
	assert.NotEmpty(t, first)

	// Same content again: everything is already in the instance cache
	second := e.FromMarkup(samplePage, base)
	assert.Empty(t, second)
	assert.Equal(t, len(first), e.EmittedCount())
}

func TestFromMarkupScopeFiltering(t *testing.T) {
	e := newTestExtractor(t, filter.Options{Domain: "https://example.com"})
	base, _ := url.Parse("https://example.com/")

	urls := e.FromMarkup(samplePage, base)

	// Same-domain-only scope: the CDN subdomain is filtered out
	assert.NotContains(t, urls, "https://cdn.example.com/logo.png")
	assert.Contains(t, urls, "https://example.com/about")
}

func TestFromMarkupMalformedHTML(t *testing.T) {
	e := newTestExtractor(t, filter.Options{Domain: "example.com"})
	base, _ := url.Parse("https://example.com/")

	// Tag soup still yields the regex hits; nothing panics
	urls := e.FromMarkup(`<a href="/ok"<div><<<`, base)
	assert.Contains(t, urls, "https://example.com/ok")
}

func TestFromScript(t *testing.T) {
	e := newTestExtractor(t, filter.Options{Domain: "example.com", IncludeSubdomains: true})
	base, _ := url.Parse("https://example.com/js/app.js")

	script := `
const endpoint = "https://api.example.com/v2/users";
import "./modules/auth.js";
fetch('/api/session');
const sw = navigator.serviceWorker.register("/sw.js");
.hero { background-image: url("/img/bg.webp"); }
`
	urls := e.FromScript(script, base)

	assert.Contains(t, urls, "https://api.example.com/v2/users")
	assert.Contains(t, urls, "https://example.com/js/modules/auth.js")
	assert.Contains(t, urls, "https://example.com/api/session")
	assert.Contains(t, urls, "https://example.com/sw.js")
	assert.Contains(t, urls, "https://example.com/img/bg.webp")
}

func TestFromScriptWithoutBase(t *testing.T) {
	e := newTestExtractor(t, filter.Options{})

	// Without a base only absolute URLs survive normalization
	urls := e.FromScript(`fetch("/relative"); const u = "https://example.com/abs";`, nil)
	assert.Equal(t, []string{"https://example.com/abs"}, urls)
}

func TestCandidateResolve(t *testing.T) {
	assert.Equal(t, "/x", Candidate{Match: `"/x"`, Capture: "/x"}.Resolve())
	assert.Equal(t, "/y", Candidate{Match: ` "/y" `}.Resolve())
}
