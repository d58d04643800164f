package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/id88/urlspider/pkg/config"
	"github.com/id88/urlspider/pkg/filter"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testSite records which paths were fetched and serves a small linked site:
// / -> /a, /b ; /a -> /c ; everything else 404
type testSite struct {
	mu      sync.Mutex
	fetched map[string]int
	srv     *httptest.Server
}

func newTestSite() *testSite {
	ts := &testSite{fetched: make(map[string]int)}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.fetched[r.URL.Path]++
		ts.mu.Unlock()

		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<html><body>
				<a href="/a">A</a>
				<a href="/b">B</a>
				<a href="/a">A again</a>
				<a href="javascript:void(0)">noop</a>
			</body></html>`)
		case "/a":
			fmt.Fprint(w, `<html><body><a href="/c">C</a></body></html>`)
		case "/b":
			fmt.Fprint(w, `<html><body><a href="/">home</a></body></html>`)
		case "/c":
			fmt.Fprint(w, `<html><body>leaf</body></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	return ts
}

func (ts *testSite) fetchCount(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.fetched[path]
}

func (ts *testSite) totalFetches() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	total := 0
	for _, n := range ts.fetched {
		total += n
	}
	return total
}

func testConfig(target string) *config.AppConfig {
	return &config.AppConfig{
		Scope: config.ScopeConfig{Target: target},
		Crawl: config.CrawlConfig{
			MaxDepth:     2,
			MaxPages:     50,
			Workers:      3,
			MaxJSPerPage: 2,
			// Jitter left at zero: no artificial delay in tests
		},
		HTTP: config.HTTPConfig{
			Timeout:             5 * time.Second,
			MaxRetries:          0,
			InitialRetryDelay:   5 * time.Millisecond,
			MaxRetryDelay:       10 * time.Millisecond,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			DialerTimeout:       5 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

func newTestCrawler(t *testing.T, cfg *config.AppConfig) *Crawler {
	t.Helper()
	flt, err := filter.New(filter.Options{Domain: cfg.Scope.Target}, testLogger())
	require.NoError(t, err)
	return New(cfg, flt, testLogger())
}

func TestCrawlDeepDiscoversLinkedPages(t *testing.T) {
	ts := newTestSite()
	defer ts.srv.Close()

	cfg := testConfig(ts.srv.URL)
	c := newTestCrawler(t, cfg)

	start := time.Now()
	c.CrawlDeep(context.Background(), ts.srv.URL)
	result := c.Result(ts.srv.URL, start)

	assert.Contains(t, result.URLs, ts.srv.URL+"/a")
	assert.Contains(t, result.URLs, ts.srv.URL+"/b")
	assert.Contains(t, result.URLs, ts.srv.URL+"/c")
	for _, u := range result.URLs {
		assert.NotContains(t, u, "javascript:")
	}

	// Every page fetched exactly once despite duplicate links and the
	// back-link from /b to /
	assert.Equal(t, 1, ts.fetchCount("/"))
	assert.Equal(t, 1, ts.fetchCount("/a"))
	assert.Equal(t, 1, ts.fetchCount("/b"))
	assert.Equal(t, 1, ts.fetchCount("/c"))

	assert.NotEmpty(t, result.SessionID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestCrawlDeepRespectsDepthBound(t *testing.T) {
	ts := newTestSite()
	defer ts.srv.Close()

	cfg := testConfig(ts.srv.URL)
	cfg.Crawl.MaxDepth = 1
	c := newTestCrawler(t, cfg)

	c.CrawlDeep(context.Background(), ts.srv.URL)
	result := c.Result(ts.srv.URL, time.Now())

	// /c is discovered on /a (depth 1) but never fetched: depth 2 tasks are
	// not enqueued
	assert.Contains(t, result.URLs, ts.srv.URL+"/c")
	assert.Equal(t, 0, ts.fetchCount("/c"))
	assert.Equal(t, 1, ts.fetchCount("/a"))
}

func TestCrawlDeepRespectsPageBudget(t *testing.T) {
	ts := newTestSite()
	defer ts.srv.Close()

	cfg := testConfig(ts.srv.URL)
	cfg.Crawl.MaxPages = 2
	c := newTestCrawler(t, cfg)

	c.CrawlDeep(context.Background(), ts.srv.URL)
	result := c.Result(ts.srv.URL, time.Now())

	assert.Equal(t, int64(2), result.PagesCrawled)
	assert.Equal(t, 2, ts.totalFetches())
}

func TestCrawlSingleDoesNotFollowLinks(t *testing.T) {
	ts := newTestSite()
	defer ts.srv.Close()

	cfg := testConfig(ts.srv.URL)
	c := newTestCrawler(t, cfg)

	c.CrawlSingle(context.Background(), ts.srv.URL)
	result := c.Result(ts.srv.URL, time.Now())

	assert.Contains(t, result.URLs, ts.srv.URL+"/a")
	assert.Contains(t, result.URLs, ts.srv.URL+"/b")
	assert.Equal(t, int64(1), result.PagesCrawled)
	assert.Equal(t, 1, ts.totalFetches())
}

func TestCrawlBatch(t *testing.T) {
	ts := newTestSite()
	defer ts.srv.Close()

	cfg := testConfig(ts.srv.URL)
	c := newTestCrawler(t, cfg)

	c.CrawlBatch(context.Background(), []string{
		ts.srv.URL + "/a",
		ts.srv.URL + "/b",
		ts.srv.URL + "/a", // duplicate collapses via the visited store
	})
	result := c.Result(ts.srv.URL, time.Now())

	assert.Equal(t, int64(2), result.PagesCrawled)
	assert.Equal(t, 1, ts.fetchCount("/a"))
	assert.Equal(t, 1, ts.fetchCount("/b"))
	// Batch tasks never enqueue successors
	assert.Equal(t, 0, ts.fetchCount("/c"))
	assert.Contains(t, result.URLs, ts.srv.URL+"/c")
}

func TestCrawlDeepFollowsScripts(t *testing.T) {
	mux := http.NewServeMux()
	var srvURL string
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><script src="/app.js"></script></body></html>`)
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `fetch("/api/from-script");`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	cfg := testConfig(srvURL)
	cfg.Crawl.ExtractJS = true
	c := newTestCrawler(t, cfg)

	c.CrawlDeep(context.Background(), srvURL)
	result := c.Result(srvURL, time.Now())

	assert.Contains(t, result.URLs, srvURL+"/app.js")
	assert.Contains(t, result.URLs, srvURL+"/api/from-script")
}

func TestCrawlDropsFailedFetches(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/gone">gone</a><a href="/ok">ok</a></body></html>`)
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/after-ok">x</a></body></html>`)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	c := newTestCrawler(t, cfg)

	// The 404 is logged and dropped; the crawl continues
	c.CrawlDeep(context.Background(), srv.URL)
	result := c.Result(srv.URL, time.Now())

	assert.Contains(t, result.URLs, srv.URL+"/after-ok")
}

func TestCrawlRespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	var privateFetched bool
	mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		privateFetched = true
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/private/page">secret</a></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.HTTP.RespectRobots = true
	cfg.HTTP.UserAgent = "urlspider-test"
	c := newTestCrawler(t, cfg)

	c.CrawlDeep(context.Background(), srv.URL)

	assert.False(t, privateFetched)
}

func TestExtractScript(t *testing.T) {
	cfg := testConfig("")
	c := newTestCrawler(t, cfg)

	n := c.ExtractScript(`const api = "https://api.example.com/v1/users";`, "")
	assert.Equal(t, 1, n)

	result := c.Result("inline", time.Now())
	assert.Equal(t, []string{"https://api.example.com/v1/users"}, result.URLs)
}

func TestSessionIDsAreUnique(t *testing.T) {
	cfg := testConfig("")
	a := newTestCrawler(t, cfg)
	b := newTestCrawler(t, cfg)
	assert.NotEqual(t, a.SessionID(), b.SessionID())
}
