package parse

import (
	"net"
	"net/url"
	"strings"
)

// Scheme prefixes that can never be fetched; candidates starting with one of
// these are rejected outright
var blockedSchemes = []string{
	"javascript:", "mailto:", "tel:", "data:", "blob:", "about:",
}

// CleanCandidate trims whitespace and surrounding quote characters from a raw
// extracted candidate
func CleanCandidate(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}

// IsBlockedScheme reports whether the string starts with a non-navigable
// scheme or is a bare fragment
func IsBlockedScheme(s string) bool {
	lower := strings.ToLower(s)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return strings.HasPrefix(s, "#")
}

// Normalize canonicalizes a raw URL string relative to an optional base URL
// It trims whitespace/quotes, rejects non-navigable schemes and bare
// fragments, resolves relative references against base (absolute-path,
// document-relative, parent-relative and scheme-relative forms), lowercases
// scheme and host, strips default ports, collapses dot segments, drops the
// fragment and preserves the query verbatim
// Returns ("", false) when the input is not a usable URL; it never panics on
// malformed input
func Normalize(raw string, base *url.URL) (string, bool) {
	candidate := CleanCandidate(raw)
	if candidate == "" {
		return "", false
	}
	if IsBlockedScheme(candidate) {
		return "", false
	}

	var resolved *url.URL
	if base == nil {
		// Without a base only already-absolute URLs are acceptable
		lower := strings.ToLower(candidate)
		if !strings.HasPrefix(lower, "http://") &&
			!strings.HasPrefix(lower, "https://") &&
			!strings.HasPrefix(lower, "ftp://") {
			return "", false
		}
		parsed, err := url.Parse(candidate)
		if err != nil {
			return "", false
		}
		resolved = parsed
	} else {
		ref, err := url.Parse(candidate)
		if err != nil {
			return "", false
		}
		resolved = base.ResolveReference(ref)
	}

	return normalizeComponents(resolved)
}

// normalizeComponents canonicalizes an absolute URL in place and reassembles
// it as the dedup-key string
func normalizeComponents(u *url.URL) (string, bool) {
	if u.Scheme == "" || u.Host == "" {
		return "", false
	}
	// Work on a copy
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	// Remove default ports
	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil { // Host included a port
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	} // If no port or split error, Host remains unchanged

	// Collapse dot segments left-to-right; a leading ".." past the root is
	// dropped rather than treated as an error
	normalized.Path = collapseDotSegments(normalized.Path)
	normalized.RawPath = "" // Re-encode from the cleaned path

	normalized.Fragment = ""    // Remove fragment
	normalized.RawFragment = "" // Query is left untouched

	return normalized.String(), true
}

// collapseDotSegments resolves "." and ".." path segments without touching
// anything else (trailing slashes and repeated slashes are preserved)
func collapseDotSegments(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.Contains(path, "./") && !strings.HasSuffix(path, ".") {
		return path
	}

	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case ".":
			continue
		case "..":
			// Keep the leading empty segment so rooted paths stay rooted
			if len(out) > 1 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	cleaned := strings.Join(out, "/")
	if cleaned == "" {
		cleaned = "/"
	}
	return cleaned
}
