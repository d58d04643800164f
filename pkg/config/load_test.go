package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/id88/urlspider/pkg/utils"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
scope:
  target: https://example.com
  include_subdomains: true
  exclude_patterns:
    - \.png$
crawl:
  deep: true
  max_depth: 2
  max_pages: 50
http:
  max_retries: 2
  user_agent: custom-agent/1.0
output:
  dir: out
  json: true
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Scope.Target)
	assert.True(t, cfg.Scope.IncludeSubdomains)
	assert.Equal(t, []string{`\.png$`}, cfg.Scope.ExcludePatterns)
	assert.True(t, cfg.Crawl.Deep)
	assert.Equal(t, 2, cfg.Crawl.MaxDepth)
	assert.Equal(t, 50, cfg.Crawl.MaxPages)
	assert.Equal(t, 2, cfg.HTTP.MaxRetries)
	assert.Equal(t, "custom-agent/1.0", cfg.HTTP.UserAgent)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.JSON)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
crawl:
  max_deepth: 2
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigValidation))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrConfigValidation))
}

func TestLoadFileEmpty(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, &AppConfig{}, cfg)
}
