package config

import (
	"time"

	"github.com/id88/urlspider/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error. Invalid bounds (negative
// depth/pages/workers, zero timeout after defaulting) are configuration
// errors and abort before any crawl work begins.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// Crawl bounds
	if c.Crawl.MaxDepth < 0 {
		return warnings, utils.WrapErrorf(utils.ErrConfigValidation, "max depth must be at least 1, got %d", c.Crawl.MaxDepth)
	}
	if c.Crawl.MaxDepth == 0 {
		warnings = append(warnings, "max depth not set, defaulting to 3")
		c.Crawl.MaxDepth = 3
	}

	if c.Crawl.MaxPages < 0 {
		return warnings, utils.WrapErrorf(utils.ErrConfigValidation, "max pages must be at least 1, got %d", c.Crawl.MaxPages)
	}
	if c.Crawl.MaxPages == 0 {
		warnings = append(warnings, "max pages not set, defaulting to 100")
		c.Crawl.MaxPages = 100
	}

	if c.Crawl.Workers < 0 {
		return warnings, utils.WrapErrorf(utils.ErrConfigValidation, "workers must be at least 1, got %d", c.Crawl.Workers)
	}
	if c.Crawl.Workers == 0 {
		warnings = append(warnings, "workers not set, defaulting to 5")
		c.Crawl.Workers = 5
	}

	if c.Crawl.MaxJSPerPage <= 0 {
		c.Crawl.MaxJSPerPage = 5
	}

	// Pre-fetch jitter range
	if c.Crawl.JitterMin < 0 || c.Crawl.JitterMax < 0 {
		return warnings, utils.WrapErrorf(utils.ErrConfigValidation, "jitter range cannot be negative")
	}
	if c.Crawl.JitterMin == 0 && c.Crawl.JitterMax == 0 {
		c.Crawl.JitterMin = 100 * time.Millisecond
		c.Crawl.JitterMax = 500 * time.Millisecond
	}
	if c.Crawl.JitterMax < c.Crawl.JitterMin {
		warnings = append(warnings, "jitter_max below jitter_min, swapping")
		c.Crawl.JitterMin, c.Crawl.JitterMax = c.Crawl.JitterMax, c.Crawl.JitterMin
	}

	// HTTP settings
	if c.HTTP.Timeout < 0 {
		return warnings, utils.WrapErrorf(utils.ErrConfigValidation, "timeout cannot be negative")
	}
	if c.HTTP.Timeout == 0 {
		warnings = append(warnings, "timeout not set, defaulting to 10s")
		c.HTTP.Timeout = 10 * time.Second
	}

	if c.HTTP.MaxRetries < 0 {
		return warnings, utils.WrapErrorf(utils.ErrConfigValidation, "retries cannot be negative, got %d", c.HTTP.MaxRetries)
	}
	if c.HTTP.MaxRetries > 0 {
		if c.HTTP.InitialRetryDelay <= 0 {
			c.HTTP.InitialRetryDelay = 1 * time.Second
		}
		if c.HTTP.MaxRetryDelay <= 0 {
			c.HTTP.MaxRetryDelay = 30 * time.Second
		}
		if c.HTTP.InitialRetryDelay > c.HTTP.MaxRetryDelay {
			warnings = append(warnings, "initial_retry_delay exceeds max_retry_delay, using max_retry_delay for initial")
			c.HTTP.InitialRetryDelay = c.HTTP.MaxRetryDelay
		}
	}

	if c.HTTP.MaxIdleConns <= 0 {
		c.HTTP.MaxIdleConns = 100
	}
	if c.HTTP.MaxIdleConnsPerHost <= 0 {
		c.HTTP.MaxIdleConnsPerHost = 10
	}
	if c.HTTP.DialerTimeout <= 0 {
		c.HTTP.DialerTimeout = 15 * time.Second
	}
	if c.HTTP.TLSHandshakeTimeout <= 0 {
		c.HTTP.TLSHandshakeTimeout = 10 * time.Second
	}

	// Output settings
	if c.Output.Dir == "" {
		c.Output.Dir = "results"
	}
	if c.Output.DisplayLimit <= 0 {
		c.Output.DisplayLimit = 50
	}

	return warnings, nil
}
