package filter

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/id88/urlspider/pkg/models"
	"github.com/id88/urlspider/pkg/parse"
	"github.com/id88/urlspider/pkg/utils"
)

// Built-in blacklist: non-navigable schemes plus junk tokens that the regex
// strategies routinely pick up from markup and scripts (boolean literals,
// CSS vendor prefixes, viewport attribute values, digit/percent runs)
var builtinBlacklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^javascript:`),
	regexp.MustCompile(`(?i)^mailto:`),
	regexp.MustCompile(`(?i)^tel:`),
	regexp.MustCompile(`^#`),
	regexp.MustCompile(`(?i)^data:`),
	regexp.MustCompile(`(?i)^blob:`),
	regexp.MustCompile(`(?i)^about:`),
	regexp.MustCompile(`(?i)^(true|false|null|undefined)$`),
	regexp.MustCompile(`(?i)^(webkit|moz|ms|o)-`),
	regexp.MustCompile(`^[\d\s\x{4e00}-\x{9fa5}%]+$`),
	regexp.MustCompile(`(?i)^(width|height|initial-scale|maximum-scale|minimum-scale|user-scalable)`),
	regexp.MustCompile(`^[\x{4e00}-\x{9fa5}]`),
}

// Format shape checks: a candidate must look like a rooted/absolute URL, a
// bare domain, or a dotted-extension relative path
var (
	hasAlnumRe   = regexp.MustCompile(`[a-zA-Z0-9]`)
	bareDomainRe = regexp.MustCompile(`^[a-zA-Z0-9_\-]+\.[a-zA-Z]{2,}`)
	relFileRe    = regexp.MustCompile(`^\.{0,2}/?[a-zA-Z0-9_\-/]+\.[a-zA-Z]{1,10}`)
)

// Extension tables used by Categorize
var (
	staticExtensions = []string{".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".woff", ".woff2"}
	fileExtensions   = []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx"}
)

// Options configures a Filter; immutable once the crawl starts
type Options struct {
	// Domain is the crawl target (URL or bare host); empty disables the
	// scope check entirely
	Domain string
	// IncludeSubdomains admits proper subdomains of the target base domain
	IncludeSubdomains bool
	// IncludePatterns: when non-empty, an admitted URL must match at least
	// one; also acts as an override for out-of-scope hosts
	IncludePatterns []string
	// ExcludePatterns are user-supplied rejection patterns
	ExcludePatterns []string
}

// Filter decides whether a URL is in scope for the crawl and buckets
// admitted URLs into reporting categories
type Filter struct {
	domain            string
	targetHost        string
	baseDomain        string
	includeSubdomains bool
	exclude           []*regexp.Regexp
	include           []*regexp.Regexp
	log               *logrus.Logger
}

// New builds a Filter from options, compiling user patterns up front.
// Invalid patterns are configuration errors and fail construction.
func New(opts Options, log *logrus.Logger) (*Filter, error) {
	exclude, err := utils.CompileRegexPatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	include, err := utils.CompileRegexPatterns(opts.IncludePatterns)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		domain:            opts.Domain,
		includeSubdomains: opts.IncludeSubdomains,
		exclude:           exclude,
		include:           include,
		log:               log,
	}
	if opts.Domain != "" {
		f.targetHost = parse.Hostname(opts.Domain)
		f.baseDomain = parse.BaseDomain(opts.Domain)
	}
	return f, nil
}

// BaseDomain returns the registrable domain of the configured target, or ""
// when no target is set
func (f *Filter) BaseDomain() string {
	return f.baseDomain
}

// ValidFormat performs cheap shape checks on a raw candidate before
// normalization: minimum length, at least one alphanumeric character, no
// built-in blacklist hit, and a recognizable URL or file-path form
func (f *Filter) ValidFormat(raw string) bool {
	candidate := parse.CleanCandidate(raw)
	if len(candidate) < 3 {
		return false
	}
	if !hasAlnumRe.MatchString(candidate) {
		return false
	}
	for _, re := range builtinBlacklist {
		if re.MatchString(candidate) {
			return false
		}
	}
	if strings.HasPrefix(candidate, "http://") ||
		strings.HasPrefix(candidate, "https://") ||
		strings.HasPrefix(candidate, "ftp://") ||
		strings.HasPrefix(candidate, "//") ||
		strings.HasPrefix(candidate, "/") {
		return true
	}
	return bareDomainRe.MatchString(candidate) || relFileRe.MatchString(candidate)
}

// Admit decides whether a normalized URL is in scope.
// Host-less URLs always pass the scope check; they are assumed relative to
// the crawl target.
func (f *Filter) Admit(normalized string) bool {
	if normalized == "" {
		return false
	}
	if parse.IsBlockedScheme(normalized) {
		return false
	}
	for _, re := range f.exclude {
		if re.MatchString(normalized) {
			return false
		}
	}

	if f.domain != "" {
		host := parse.Hostname(normalized)
		if host != "" && !f.inScope(host) && !f.matchesInclude(normalized) {
			return false
		}
	}

	if len(f.include) > 0 && !f.matchesInclude(normalized) {
		return false
	}
	return true
}

// inScope applies the configured scope policy to an explicit host
func (f *Filter) inScope(host string) bool {
	if f.includeSubdomains {
		return parse.IsSameOrSubdomain(host, f.baseDomain)
	}
	// Same-domain-only: the target's own host is still in scope even when it
	// is itself a subdomain (www.example.com)
	return host == f.baseDomain || host == f.targetHost
}

func (f *Filter) matchesInclude(u string) bool {
	for _, re := range f.include {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

// Categorize assigns each URL to exactly one reporting bucket using
// extension/path heuristics first, then host-based classification.
// This is a reporting convenience, not an admission gate.
func (f *Filter) Categorize(urls []string) map[models.Category][]string {
	buckets := make(map[models.Category][]string, len(models.Categories))

	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil {
			continue
		}
		path := strings.ToLower(parsed.Path)

		switch {
		case hasAnySuffix(path, staticExtensions):
			buckets[models.CategoryStatic] = append(buckets[models.CategoryStatic], u)
		case hasAnySuffix(path, fileExtensions):
			buckets[models.CategoryFiles] = append(buckets[models.CategoryFiles], u)
		case strings.Contains(path, "/api/") || strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".xml"):
			buckets[models.CategoryAPIs] = append(buckets[models.CategoryAPIs], u)
		default:
			host := strings.ToLower(parsed.Hostname())
			switch {
			case host == "" || host == f.targetHost:
				buckets[models.CategoryInternal] = append(buckets[models.CategoryInternal], u)
			case f.baseDomain != "" && parse.BaseDomain(host) == f.baseDomain:
				buckets[models.CategorySubdomains] = append(buckets[models.CategorySubdomains], u)
			default:
				buckets[models.CategoryExternal] = append(buckets[models.CategoryExternal], u)
			}
		}
	}
	return buckets
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
