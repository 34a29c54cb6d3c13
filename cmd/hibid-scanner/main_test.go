package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBaseURL(t *testing.T) {
	url, err := promptBaseURL(strings.NewReader("https://hibid.com/catalog/12/estate\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://hibid.com/catalog/12/estate", url)
}

func TestPromptBaseURLTrimsWhitespace(t *testing.T) {
	url, err := promptBaseURL(strings.NewReader("  https://hibid.com/catalog/12/estate  \n"))
	require.NoError(t, err)
	assert.Equal(t, "https://hibid.com/catalog/12/estate", url)
}

func TestPromptBaseURLWithoutTrailingNewline(t *testing.T) {
	url, err := promptBaseURL(strings.NewReader("https://hibid.com/catalog/12/estate"))
	require.NoError(t, err)
	assert.Equal(t, "https://hibid.com/catalog/12/estate", url)
}

func TestPromptBaseURLEmptyInput(t *testing.T) {
	_, err := promptBaseURL(strings.NewReader("\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auction url is required")
}
