package models

import (
	"sort"
	"sync"
	"time"
)

// WorkItem represents a URL and its discovery depth to be processed by a worker
type WorkItem struct {
	URL   string
	Depth int
}

// Category identifies the reporting bucket a URL is assigned to
type Category string

const (
	CategoryInternal   Category = "internal"
	CategorySubdomains Category = "subdomains"
	CategoryExternal   Category = "external"
	CategoryFiles      Category = "files"
	CategoryAPIs       Category = "apis"
	CategoryStatic     Category = "static"
)

// Categories lists all buckets in display order
var Categories = []Category{
	CategoryInternal,
	CategorySubdomains,
	CategoryExternal,
	CategoryFiles,
	CategoryAPIs,
	CategoryStatic,
}

// ResultSet accumulates accepted URLs and discovered subdomains during a crawl.
// Inserts are concurrent and order-independent; Finalize dedups and sorts.
type ResultSet struct {
	mu         sync.Mutex
	urls       map[string]struct{}
	subdomains map[string]struct{}
}

// NewResultSet creates an empty ResultSet
func NewResultSet() *ResultSet {
	return &ResultSet{
		urls:       make(map[string]struct{}),
		subdomains: make(map[string]struct{}),
	}
}

// AddURLs merges a batch of normalized URLs into the set
func (rs *ResultSet) AddURLs(urls []string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, u := range urls {
		if u != "" {
			rs.urls[u] = struct{}{}
		}
	}
}

// AddSubdomains merges a batch of subdomain hosts into the set
func (rs *ResultSet) AddSubdomains(subdomains []string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, s := range subdomains {
		if s != "" {
			rs.subdomains[s] = struct{}{}
		}
	}
}

// URLCount returns the number of distinct URLs collected so far
func (rs *ResultSet) URLCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.urls)
}

// URLs returns a snapshot of the collected URLs (unordered)
func (rs *ResultSet) URLs() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]string, 0, len(rs.urls))
	for u := range rs.urls {
		out = append(out, u)
	}
	return out
}

// Subdomains returns a snapshot of the collected subdomains (unordered)
func (rs *ResultSet) Subdomains() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]string, 0, len(rs.subdomains))
	for s := range rs.subdomains {
		out = append(out, s)
	}
	return out
}

// CrawlResult is the finalized output of one crawl session, handed to the
// reporting/export stage
type CrawlResult struct {
	Target     string    `json:"target"`
	SessionID  string    `json:"session_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	URLs       []string  `json:"urls"`
	Subdomains []string  `json:"subdomains"`
	PagesCrawled int64   `json:"pages_crawled"`
}

// Finalize snapshots a ResultSet into a sorted CrawlResult.
// URLs are ordered by (host, url) so related endpoints group together;
// subdomains lexicographically.
func (rs *ResultSet) Finalize(target, sessionID string, startedAt time.Time, pages int64, hostOf func(string) string) *CrawlResult {
	urls := rs.URLs()
	sort.Slice(urls, func(i, j int) bool {
		hi, hj := hostOf(urls[i]), hostOf(urls[j])
		if hi != hj {
			return hi < hj
		}
		return urls[i] < urls[j]
	})
	subdomains := rs.Subdomains()
	sort.Strings(subdomains)

	return &CrawlResult{
		Target:       target,
		SessionID:    sessionID,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		URLs:         urls,
		Subdomains:   subdomains,
		PagesCrawled: pages,
	}
}
