package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSecrets(t *testing.T) {
	out := RedactSecrets(`{"error":"invalid Secret s3cr3t for app-1"}`, "s3cr3t", "app-1")
	assert.NotContains(t, out, "s3cr3t")
	assert.NotContains(t, out, "app-1")
	assert.Contains(t, out, "****")

	// Empty secrets must not blank the whole string.
	assert.Equal(t, "body", RedactSecrets("body", ""))
}

func TestMaskSensitive(t *testing.T) {
	out := MaskSensitive("refused for DE89370400440532013000 and 4111 1111 1111 1111")
	assert.NotContains(t, out, "DE89370400440532013000")
	assert.NotContains(t, out, "4111 1111 1111 1111")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", Snippet("short", 10))
	assert.Equal(t, "lon...", Snippet("longer than that", 3))
}
