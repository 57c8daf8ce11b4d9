// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trackingCodePattern = regexp.MustCompile(`^[0-9A-F]{8}4[0-9A-F]{3}[89AB]$`)

func TestGenerateTrackingCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateTrackingCode()
		require.NoError(t, err)

		require.Len(t, code, 13)
		assert.Regexp(t, trackingCodePattern, code)
	}
}

func TestGenerateTrackingCodeVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateTrackingCode()
		require.NoError(t, err)
		seen[code] = true
	}
	// 100 draws from a 2^48 space should not collide
	assert.Len(t, seen, 100)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	assert.Regexp(t, `^[a-zA-Z0-9]+$`, s)
}
