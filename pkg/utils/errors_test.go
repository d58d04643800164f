package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "None"},
		{"retry with server error", fmt.Errorf("%w: %w", ErrRetryFailed, ErrServerHTTPError), "RetryFailed_HTTPServer"},
		{"retry with client error", fmt.Errorf("%w: %w", ErrRetryFailed, ErrClientHTTPError), "RetryFailed_HTTPClient"},
		{"retry bare", ErrRetryFailed, "RetryFailed_Unknown"},
		{"client 404", fmt.Errorf("%w: status 404 404 Not Found", ErrClientHTTPError), "HTTP_404"},
		{"client 403", fmt.Errorf("%w: status 403 403 Forbidden", ErrClientHTTPError), "HTTP_403"},
		{"client other", fmt.Errorf("%w: status 410 410 Gone", ErrClientHTTPError), "HTTP_4xx"},
		{"server", fmt.Errorf("%w: status 502", ErrServerHTTPError), "HTTP_5xx"},
		{"robots", ErrRobotsDisallowed, "Policy_Robots"},
		{"body read", fmt.Errorf("%w: eof", ErrResponseBodyRead), "Network_BodyRead"},
		{"request creation", fmt.Errorf("%w: bad url", ErrRequestCreation), "Internal_RequestCreation"},
		{"config", fmt.Errorf("%w: bad depth", ErrConfigValidation), "Config_Validation"},
		{"context canceled", context.Canceled, "System_ContextCanceled"},
		{"deadline", context.DeadlineExceeded, "System_ContextDeadlineExceeded"},
		{"unknown", errors.New("mystery"), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CategorizeError(tt.err))
		})
	}
}

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrParsing, "bad URL %q", "::")
	assert.True(t, errors.Is(err, ErrParsing))
	assert.Contains(t, err.Error(), `bad URL "::"`)
}

func TestCompileRegexPatterns(t *testing.T) {
	compiled, err := CompileRegexPatterns([]string{`\.png$`, "", "admin"})
	require.NoError(t, err)
	require.Len(t, compiled, 2)

	// Patterns are compiled case-insensitive
	assert.True(t, compiled[0].MatchString("IMG/LOGO.PNG"))
	assert.True(t, compiled[1].MatchString("/Admin/panel"))

	_, err = CompileRegexPatterns([]string{"["})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigValidation))
}
