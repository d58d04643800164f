package subdomains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromURLs(t *testing.T) {
	c := New("https://www.example.com")
	assert.Equal(t, "example.com", c.BaseDomain())

	urls := []string{
		"https://api.example.com/v1/users",
		"https://API.example.com/v1/users", // case-folds into the same host
		"https://cdn.example.com/app.js",
		"https://example.com/",        // base itself is not a subdomain
		"https://notexample.com/x",    // suffix lookalike
		"https://other.org/page",      // unrelated
		"https://a.b.example.com/x",   // deep subdomain kept whole
	}

	got := c.FromURLs(urls)
	assert.ElementsMatch(t, []string{
		"api.example.com",
		"cdn.example.com",
		"a.b.example.com",
	}, got)
}

func TestFromContent(t *testing.T) {
	c := New("example.com")

	content := `var cfg = {api: "api.example.com", ws: "wss://push.example.com/live"};
	// mirrors at CDN.Example.COM`

	got := c.FromContent(content)
	assert.ElementsMatch(t, []string{
		"api.example.com",
		"push.example.com",
		"cdn.example.com",
	}, got)
}

func TestCollectorWithoutTarget(t *testing.T) {
	c := New("")
	assert.Empty(t, c.BaseDomain())
	assert.Nil(t, c.FromURLs([]string{"https://a.example.com/"}))
	assert.Nil(t, c.FromContent("a.example.com"))
}
