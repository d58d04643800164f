package crawler

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/id88/urlspider/pkg/config"
	"github.com/id88/urlspider/pkg/extract"
	"github.com/id88/urlspider/pkg/fetch"
	"github.com/id88/urlspider/pkg/filter"
	"github.com/id88/urlspider/pkg/models"
	"github.com/id88/urlspider/pkg/parse"
	"github.com/id88/urlspider/pkg/queue"
	"github.com/id88/urlspider/pkg/storage"
	"github.com/id88/urlspider/pkg/subdomains"
	"github.com/id88/urlspider/pkg/utils"
)

// Extensions treated as fetchable script bodies for the JS follow-on pass
var scriptExtensions = []string{".js", ".mjs", ".cjs"}

// Crawler drives fetch -> extract -> filter -> enqueue across a bounded
// worker pool, tracking visited state, depth and the page budget.
// One Crawler instance corresponds to one crawl session; its visited store
// and result set are discarded when the session ends.
type Crawler struct {
	cfg       *config.AppConfig
	log       *logrus.Logger
	sessionID string

	fetcher   *fetch.Fetcher
	robots    *fetch.RobotsHandler // nil when robots.txt is not honored
	extractor *extract.Extractor
	filter    *filter.Filter
	collector *subdomains.Collector

	store   storage.VisitedStore
	results *models.ResultSet
	queue   *queue.WorkQueue

	wg        sync.WaitGroup // Tracks queued-but-unfinished work items
	processed atomic.Int64   // Distinct pages fetched this session
}

// New creates a Crawler and its collaborators for a single session
func New(cfg *config.AppConfig, flt *filter.Filter, log *logrus.Logger) *Crawler {
	client := fetch.NewClient(cfg.HTTP, log)
	fetcher := fetch.NewFetcher(client, cfg.HTTP, log)

	var robots *fetch.RobotsHandler
	if cfg.HTTP.RespectRobots {
		robots = fetch.NewRobotsHandler(fetcher, log)
	}

	return &Crawler{
		cfg:       cfg,
		log:       log,
		sessionID: uuid.NewString(),
		fetcher:   fetcher,
		robots:    robots,
		extractor: extract.New(flt, log),
		filter:    flt,
		collector: subdomains.New(cfg.Scope.Target),
		store:     storage.NewMemoryStore(),
		results:   models.NewResultSet(),
		queue:     queue.NewWorkQueue(log),
	}
}

// SessionID returns the unique identifier of this crawl session
func (c *Crawler) SessionID() string {
	return c.sessionID
}

// PagesCrawled returns the number of distinct pages fetched so far
func (c *Crawler) PagesCrawled() int64 {
	return c.processed.Load()
}

// CrawlDeep breadth-first crawls from startURL, bounded by max depth, the
// page budget and the worker-pool size. Individual fetch failures are
// logged and dropped; they never abort the crawl.
func (c *Crawler) CrawlDeep(ctx context.Context, startURL string) {
	crawlLog := c.log.WithFields(logrus.Fields{
		"session":   c.sessionID,
		"start_url": startURL,
		"max_depth": c.cfg.Crawl.MaxDepth,
		"max_pages": c.cfg.Crawl.MaxPages,
	})
	crawlLog.Info("Starting deep crawl")

	c.wg.Add(1)
	c.queue.Add(&models.WorkItem{URL: startURL, Depth: 0})

	// Close the queue once every queued item (and its descendants) is done
	go func() {
		c.wg.Wait()
		c.queue.Close()
	}()

	var workers sync.WaitGroup
	for i := 0; i < c.cfg.Crawl.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for {
				item, ok := c.queue.Pop()
				if !ok {
					return
				}
				c.processItem(ctx, item)
				c.wg.Done()
			}
		}()
	}
	workers.Wait()

	crawlLog.WithFields(logrus.Fields{
		"pages": c.processed.Load(),
		"urls":  c.results.URLCount(),
	}).Info("Deep crawl finished")
}

// CrawlSingle fetches one page and records everything extracted from it
func (c *Crawler) CrawlSingle(ctx context.Context, pageURL string) {
	c.processItem(ctx, &models.WorkItem{URL: pageURL, Depth: c.cfg.Crawl.MaxDepth})
}

// CrawlBatch fan-out processes a fixed list of URLs on the worker pool with
// no re-enqueueing; every task runs at depth 1
func (c *Crawler) CrawlBatch(ctx context.Context, urls []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Crawl.Workers)

	for _, u := range urls {
		u := u
		g.Go(func() error {
			// Failures are data here, never group-level errors
			c.processItem(gctx, &models.WorkItem{URL: u, Depth: c.cfg.Crawl.MaxDepth})
			return nil
		})
	}
	g.Wait()
}

// ExtractScript runs script extraction over content that was supplied
// directly (inline snippets or local script files), merging admitted URLs
// into the session results. Returns how many URLs were admitted.
func (c *Crawler) ExtractScript(content, baseURL string) int {
	var base *url.URL
	if baseURL != "" {
		if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
			base = parsed
		}
	}
	found := c.extractor.FromScript(content, base)
	c.results.AddURLs(found)
	c.results.AddSubdomains(c.collector.FromContent(content))
	return len(found)
}

// Result finalizes the session: the subdomain collector runs once over the
// accepted URL set and everything is deduplicated and sorted
func (c *Crawler) Result(target string, startedAt time.Time) *models.CrawlResult {
	c.results.AddSubdomains(c.collector.FromURLs(c.results.URLs()))
	return c.results.Finalize(target, c.sessionID, startedAt, c.processed.Load(), parse.Hostname)
}

// processItem handles one dequeued work item: visited admission, page
// budget, fetch+extract, result merge and successor enqueueing
func (c *Crawler) processItem(ctx context.Context, item *models.WorkItem) {
	if ctx.Err() != nil {
		return
	}

	normalized, ok := parse.Normalize(item.URL, nil)
	if !ok {
		c.log.Debugf("Dropping unnormalizable task URL: %s", item.URL)
		return
	}

	// At-most-once admission per normalized URL; first writer wins
	if !c.store.MarkVisited(normalized) {
		return
	}

	// Page budget: count distinct fetch admissions, drop the overflow
	if c.processed.Add(1) > int64(c.cfg.Crawl.MaxPages) {
		c.processed.Add(-1)
		return
	}

	pageURLs := c.crawlPage(ctx, normalized, item.Depth)
	if len(pageURLs) == 0 {
		return
	}
	c.results.AddURLs(pageURLs)

	// Enqueue successors only while below the depth bound
	if item.Depth < c.cfg.Crawl.MaxDepth {
		for _, u := range pageURLs {
			c.wg.Add(1)
			c.queue.Add(&models.WorkItem{URL: u, Depth: item.Depth + 1})
		}
	}
}

// crawlPage fetches a single page and runs the full extraction pipeline
// over its body, including the bounded JS follow-on pass
func (c *Crawler) crawlPage(ctx context.Context, pageURL string, depth int) []string {
	pageLog := c.log.WithFields(logrus.Fields{"url": pageURL, "depth": depth})

	base, err := url.Parse(pageURL)
	if err != nil {
		pageLog.Debugf("Unparseable page URL: %v", err)
		return nil
	}

	if c.robots != nil && !c.robots.Allowed(ctx, base, c.cfg.HTTP.UserAgent) {
		pageLog.Info("Skipped: disallowed by robots.txt")
		return nil
	}

	c.jitterSleep(ctx)

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		pageLog.WithField("category", utils.CategorizeError(err)).
			Warnf("Fetch failed, dropping task: %v", err)
		return nil
	}

	pageLog.Debugf("Fetched %d bytes", len(body))
	urls := c.extractor.FromMarkup(body, base)
	c.results.AddSubdomains(c.collector.FromContent(body))

	if c.cfg.Crawl.ExtractJS {
		urls = append(urls, c.followScripts(ctx, urls)...)
	}
	return urls
}

// followScripts fetches up to MaxJSPerPage script URLs found on a page and
// re-runs extraction over their bodies to surface URLs embedded in scripts
func (c *Crawler) followScripts(ctx context.Context, pageURLs []string) []string {
	var found []string
	fetched := 0
	for _, u := range pageURLs {
		if fetched >= c.cfg.Crawl.MaxJSPerPage {
			break
		}
		if !isScriptURL(u) {
			continue
		}
		fetched++

		scriptBase, err := url.Parse(u)
		if err != nil {
			continue
		}
		c.jitterSleep(ctx)
		body, err := c.fetcher.Fetch(ctx, u)
		if err != nil {
			c.log.WithFields(logrus.Fields{"url": u, "category": utils.CategorizeError(err)}).
				Debugf("Script fetch failed: %v", err)
			continue
		}
		found = append(found, c.extractor.FromScript(body, scriptBase)...)
		c.results.AddSubdomains(c.collector.FromContent(body))
	}
	return found
}

// jitterSleep applies the randomized pre-fetch delay to avoid request bursts
func (c *Crawler) jitterSleep(ctx context.Context) {
	window := c.cfg.Crawl.JitterMax - c.cfg.Crawl.JitterMin
	delay := c.cfg.Crawl.JitterMin
	if window > 0 {
		delay += time.Duration(rand.Int63n(int64(window)))
	}
	if delay <= 0 {
		return
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// isScriptURL reports whether the URL path ends in a script extension
func isScriptURL(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	for _, ext := range scriptExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
