package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"full URL", "https://www.example.com/path?q=1", "www.example.com"},
		{"URL with port", "https://example.com:8443/x", "example.com"},
		{"bare host", "example.com", "example.com"},
		{"bare host with port", "example.com:8080", "example.com"},
		{"bare host with path", "example.com/some/path", "example.com"},
		{"uppercase folded", "HTTPS://EXAMPLE.COM/", "example.com"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hostname(tt.input))
		})
	}
}

func TestBaseDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple host", "www.example.com", "example.com"},
		{"deep subdomain", "a.b.c.example.com", "example.com"},
		{"from URL", "https://api.example.com/v1", "example.com"},
		{"multi-label suffix", "shop.example.co.uk", "example.co.uk"},
		{"registrable domain unchanged", "example.com", "example.com"},
		{"IPv4 passthrough", "192.168.1.10", "192.168.1.10"},
		{"localhost", "localhost", "localhost"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BaseDomain(tt.input))
		})
	}
}

func TestIsSameOrSubdomain(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		base     string
		expected bool
	}{
		{"same host", "example.com", "example.com", true},
		{"direct subdomain", "api.example.com", "example.com", true},
		{"deep subdomain", "a.b.example.com", "example.com", true},
		{"suffix lookalike", "notexample.com", "example.com", false},
		{"different domain", "other.org", "example.com", false},
		{"empty host", "", "example.com", false},
		{"empty base", "api.example.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsSameOrSubdomain(tt.host, tt.base))
		})
	}
}
