package extract

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/id88/urlspider/pkg/filter"
	"github.com/id88/urlspider/pkg/parse"
)

// URL-bearing attributes read during the structural scan, per tag.
// Link tags are scanned for href regardless of rel; stylesheet and icon
// relations carry no special handling since the href is taken either way.
var structuralTargets = []struct {
	tag  string
	attr string
}{
	{"a", "href"},
	{"area", "href"},
	{"img", "src"},
	{"img", "data-src"},
	{"script", "src"},
	{"iframe", "src"},
	{"embed", "src"},
	{"source", "src"},
	{"track", "src"},
	{"form", "action"},
	{"base", "href"},
	{"link", "href"},
	{"meta", "content"},
	{"meta", "url"},
}

// Extractor produces normalized, filtered URLs from markup or script content
// by unioning several independent extraction strategies. It keeps an
// instance-lifetime cache of URLs it has already emitted, so pages sharing
// assets do not re-emit the same URL.
type Extractor struct {
	filter *filter.Filter
	log    *logrus.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates an Extractor bound to a filter
func New(f *filter.Filter, log *logrus.Logger) *Extractor {
	return &Extractor{
		filter: f,
		log:    log,
		seen:   make(map[string]struct{}),
	}
}

// FromMarkup extracts URLs from HTML content. All strategies run over the
// same blob: the regex pattern family, the goquery structural scan (tag
// attributes, inline styles), and the script-literal scan for inline script
// bodies. A default /favicon.ico candidate is always added when the base URL
// carries a scheme and host.
func (e *Extractor) FromMarkup(content string, base *url.URL) []string {
	raw := make(map[string]struct{})

	addCandidates(raw, scanPatterns(urlPatterns, content))
	addCandidates(raw, e.structuralScan(content))
	addCandidates(raw, scanPatterns(scriptPatterns, content))

	if base != nil && base.Scheme != "" && base.Host != "" {
		raw[base.Scheme+"://"+base.Host+"/favicon.ico"] = struct{}{}
	}

	return e.admit(raw, base)
}

// FromScript extracts URLs from script (or stylesheet) content: the regex
// pattern family plus the script-literal strategies
func (e *Extractor) FromScript(content string, base *url.URL) []string {
	raw := make(map[string]struct{})

	addCandidates(raw, scanPatterns(urlPatterns, content))
	addCandidates(raw, scanPatterns(scriptPatterns, content))
	addCandidates(raw, scanCSS(content))

	return e.admit(raw, base)
}

// EmittedCount returns how many distinct URLs this extractor has emitted
func (e *Extractor) EmittedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.seen)
}

// admit runs the shared tail of every extraction: format check, normalize,
// scope filter, then the instance cache. Output is sorted for stable logs.
func (e *Extractor) admit(raw map[string]struct{}, base *url.URL) []string {
	var out []string
	for candidate := range raw {
		if !e.filter.ValidFormat(candidate) {
			continue
		}
		normalized, ok := parse.Normalize(candidate, base)
		if !ok {
			continue
		}
		if !e.filter.Admit(normalized) {
			continue
		}

		e.mu.Lock()
		_, dup := e.seen[normalized]
		if !dup {
			e.seen[normalized] = struct{}{}
		}
		e.mu.Unlock()
		if dup {
			continue
		}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}

// structuralScan walks the parsed tag tree and reads known URL-bearing
// attributes, inline <style> blocks and style attributes.
// Parse failures are logged and skipped; the remaining strategies still run.
func (e *Extractor) structuralScan(content string) []Candidate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		e.log.WithError(err).Debug("Structural scan skipped: HTML parse failed")
		return nil
	}

	var out []Candidate
	for _, target := range structuralTargets {
		doc.Find(target.tag).Each(func(_ int, sel *goquery.Selection) {
			if val, exists := sel.Attr(target.attr); exists && val != "" {
				out = append(out, Candidate{Strategy: "structural", Match: val, Capture: val})
			}
		})
	}

	// CSS url(...) references in <style> blocks and style attributes
	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		out = append(out, scanCSS(sel.Text())...)
	})
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		if style, exists := sel.Attr("style"); exists {
			out = append(out, scanCSS(style)...)
		}
	})

	return out
}

// scanCSS extracts url(...) references from stylesheet text
func scanCSS(css string) []Candidate {
	var out []Candidate
	for _, m := range cssURLPattern.FindAllStringSubmatch(css, -1) {
		if m[1] != "" {
			out = append(out, Candidate{Strategy: "css-url", Match: m[0], Capture: m[1]})
		}
	}
	return out
}

func addCandidates(raw map[string]struct{}, candidates []Candidate) {
	for _, c := range candidates {
		if resolved := c.Resolve(); resolved != "" {
			raw[resolved] = struct{}{}
		}
	}
}
