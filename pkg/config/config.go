package config

import (
	"math/rand"
	"time"
)

// defaultUserAgents is the rotation pool used when no custom User-Agent is set
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}

// RandomUserAgent picks a User-Agent from the built-in pool
func RandomUserAgent() string {
	return defaultUserAgents[rand.Intn(len(defaultUserAgents))]
}

// ScopeConfig controls which discovered URLs are in scope for the crawl
type ScopeConfig struct {
	// Target is the seed URL or domain; empty disables domain scoping
	Target string `yaml:"target,omitempty"`
	// IncludeSubdomains admits proper subdomains of the target base domain
	IncludeSubdomains bool `yaml:"include_subdomains,omitempty"`
	// IncludeExternal disables domain scoping entirely
	IncludeExternal bool `yaml:"include_external,omitempty"`
	// IncludePatterns / ExcludePatterns are user-supplied regex filters
	IncludePatterns []string `yaml:"include_patterns,omitempty"`
	ExcludePatterns []string `yaml:"exclude_patterns,omitempty"`
}

// CrawlConfig bounds the crawl loop
type CrawlConfig struct {
	Deep         bool          `yaml:"deep,omitempty"`           // Recursive crawl vs single page
	MaxDepth     int           `yaml:"max_depth,omitempty"`      // Maximum link-following depth
	MaxPages     int           `yaml:"max_pages,omitempty"`      // Page budget per session
	Workers      int           `yaml:"workers,omitempty"`        // Worker-pool size
	ExtractJS    bool          `yaml:"extract_js,omitempty"`     // Follow script URLs and extract from their bodies
	MaxJSPerPage int           `yaml:"max_js_per_page,omitempty"` // Bound on follow-on script fetches per page
	JitterMin    time.Duration `yaml:"jitter_min,omitempty"`     // Randomized pre-fetch delay range
	JitterMax    time.Duration `yaml:"jitter_max,omitempty"`
}

// HTTPConfig configures the transport layer
type HTTPConfig struct {
	Timeout           time.Duration     `yaml:"timeout,omitempty"`             // Per-request timeout
	MaxRetries        int               `yaml:"max_retries,omitempty"`         // Transport-level retry budget
	InitialRetryDelay time.Duration     `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay     time.Duration     `yaml:"max_retry_delay,omitempty"`
	UserAgent         string            `yaml:"user_agent,omitempty"` // Fixed UA; empty rotates the built-in pool
	Headers           map[string]string `yaml:"headers,omitempty"`    // Extra request headers
	Cookies           map[string]string `yaml:"cookies,omitempty"`    // Cookies sent with every request
	RespectRobots     bool              `yaml:"respect_robots,omitempty"`
	MaxIdleConns      int               `yaml:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost int             `yaml:"max_idle_conns_per_host,omitempty"`
	DialerTimeout     time.Duration     `yaml:"dialer_timeout,omitempty"`
	TLSHandshakeTimeout time.Duration   `yaml:"tls_handshake_timeout,omitempty"`
}

// OutputConfig configures reporting and export
type OutputConfig struct {
	Dir          string `yaml:"dir,omitempty"` // Export directory
	JSON         bool   `yaml:"json,omitempty"`
	CSV          bool   `yaml:"csv,omitempty"`
	Markdown     bool   `yaml:"markdown,omitempty"`
	NoColor      bool   `yaml:"no_color,omitempty"`
	Quiet        bool   `yaml:"quiet,omitempty"`
	DisplayLimit int    `yaml:"display_limit,omitempty"` // Console listing cap per category
}

// AppConfig is the full immutable configuration for one crawl session.
// It is constructed once at startup (flags over optional YAML file) and
// passed into each component; no process-wide mutable state survives
// between sessions.
type AppConfig struct {
	Scope  ScopeConfig  `yaml:"scope,omitempty"`
	Crawl  CrawlConfig  `yaml:"crawl,omitempty"`
	HTTP   HTTPConfig   `yaml:"http,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`
}
