package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	ok, rehash := VerifyPassword(hash, "s3cret!")
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, rehash = VerifyPassword(hash, "wrong")
	assert.False(t, ok)
	assert.False(t, rehash)
}

func TestVerifyPassword_LegacyPlaintext(t *testing.T) {
	ok, rehash := VerifyPassword("plain-pass", "plain-pass")
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, rehash = VerifyPassword("plain-pass", "other")
	assert.False(t, ok)
	assert.False(t, rehash)

	ok, _ = VerifyPassword("", "")
	assert.False(t, ok)
}
