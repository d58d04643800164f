package fetch

import (
	"context"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsHandler fetches, parses and caches robots.txt data per host.
// A host whose robots.txt cannot be fetched or parsed is cached as nil and
// treated as allow-all.
type RobotsHandler struct {
	fetcher *Fetcher
	cache   map[string]*robotstxt.RobotsData // hostname -> parsed data (or nil)
	cacheMu sync.Mutex
	log     *logrus.Logger
}

// NewRobotsHandler creates a RobotsHandler
func NewRobotsHandler(fetcher *Fetcher, log *logrus.Logger) *RobotsHandler {
	return &RobotsHandler{
		fetcher: fetcher,
		cache:   make(map[string]*robotstxt.RobotsData),
		log:     log,
	}
}

// Allowed reports whether the given URL may be fetched for the user agent
func (rh *RobotsHandler) Allowed(ctx context.Context, target *url.URL, userAgent string) bool {
	data := rh.robotsData(ctx, target)
	if data == nil {
		return true
	}
	group := data.FindGroup(userAgent)
	if group == nil {
		return true
	}
	path := target.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// robotsData retrieves robots.txt for the target's host, using the cache or
// fetching on first access
func (rh *RobotsHandler) robotsData(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	host := target.Hostname()

	rh.cacheMu.Lock()
	data, found := rh.cache[host]
	rh.cacheMu.Unlock()
	if found {
		return data // Cached, possibly nil
	}

	scheme := target.Scheme
	if scheme != "http" && scheme != "https" {
		scheme = "https"
	}
	robotsURL := (&url.URL{Scheme: scheme, Host: target.Host, Path: "/robots.txt"}).String()
	hostLog := rh.log.WithFields(logrus.Fields{"host": host, "robots_url": robotsURL})

	body, err := rh.fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		hostLog.Debugf("robots.txt unavailable, allowing all: %v", err)
		rh.store(host, nil)
		return nil
	}

	parsed, err := robotstxt.FromString(body)
	if err != nil {
		hostLog.Debugf("robots.txt unparseable, allowing all: %v", err)
		rh.store(host, nil)
		return nil
	}

	hostLog.Debug("robots.txt fetched and cached")
	rh.store(host, parsed)
	return parsed
}

func (rh *RobotsHandler) store(host string, data *robotstxt.RobotsData) {
	rh.cacheMu.Lock()
	rh.cache[host] = data
	rh.cacheMu.Unlock()
}
