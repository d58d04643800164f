package parse

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Hostname extracts the lowercased host (without port) from a URL string or
// bare host. Returns "" when no host can be determined.
func Hostname(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		parsed, err := url.Parse(s)
		if err != nil {
			return ""
		}
		return strings.ToLower(parsed.Hostname())
	}
	// Bare host, possibly with a port or path
	if idx := strings.IndexAny(s, "/?#"); idx >= 0 {
		s = s[:idx]
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	return strings.ToLower(s)
}

// BaseDomain reduces a URL or host to its registrable domain (eTLD+1) using
// the embedded public suffix table, so multi-label suffixes like co.uk and
// com.cn are handled correctly
// Falls back to the last two labels when the suffix list cannot be applied
// (localhost, raw IPs, unknown TLDs)
func BaseDomain(hostOrURL string) string {
	host := Hostname(hostOrURL)
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	etldPlusOne, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err == nil {
		return etldPlusOne
	}

	// Fallback: last two labels
	parts := strings.Split(host, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

// IsSameOrSubdomain reports whether host equals base or is a proper
// subdomain of it
func IsSameOrSubdomain(host, base string) bool {
	if host == "" || base == "" {
		return false
	}
	return host == base || strings.HasSuffix(host, "."+base)
}
