package subdomains

import (
	"regexp"
	"strings"

	"github.com/id88/urlspider/pkg/parse"
)

// Collector derives the distinct subdomains of a target base domain from
// crawl results. The base domain is computed once and immutable.
type Collector struct {
	baseDomain string
	contentRe  *regexp.Regexp
}

// New creates a Collector for the given target (URL or bare host)
func New(target string) *Collector {
	base := parse.BaseDomain(target)
	var re *regexp.Regexp
	if base != "" {
		// label.basedomain mentions embedded in arbitrary text
		re = regexp.MustCompile(`(?i)[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.` + regexp.QuoteMeta(base))
	}
	return &Collector{baseDomain: base, contentRe: re}
}

// BaseDomain returns the registrable domain the collector matches against
func (c *Collector) BaseDomain() string {
	return c.baseDomain
}

// FromURLs extracts the set of subdomain hosts from a collection of URLs.
// A host is retained only if it ends with the target's base domain and is
// not identical to it. Results are case-folded and deduplicated.
func (c *Collector) FromURLs(urls []string) []string {
	if c.baseDomain == "" {
		return nil
	}
	seen := make(map[string]struct{})
	for _, u := range urls {
		host := parse.Hostname(u)
		if host == "" || host == c.baseDomain {
			continue
		}
		if strings.HasSuffix(host, "."+c.baseDomain) {
			seen[host] = struct{}{}
		}
	}
	return keys(seen)
}

// FromContent regex-matches bare label.basedomain substrings directly in
// text, covering subdomains mentioned in scripts without being full URLs
func (c *Collector) FromContent(content string) []string {
	if c.contentRe == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, m := range c.contentRe.FindAllString(content, -1) {
		host := strings.ToLower(m)
		if host != c.baseDomain && strings.HasSuffix(host, "."+c.baseDomain) {
			seen[host] = struct{}{}
		}
	}
	return keys(seen)
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
