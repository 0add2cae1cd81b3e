package credstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 64 hex chars = 32 bytes = valid AES-256 key
const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewCipher_EmptyKeyIsPlaintext(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)
	assert.IsType(t, Plaintext{}, c)
}

func TestNewAESGCM_RejectsBadKeys(t *testing.T) {
	tests := []struct {
		name   string
		hexKey string
	}{
		{"invalid hex", "zzzz"},
		{"too short (31 bytes)", testKey[:62]},
		{"too long (33 bytes)", testKey + "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewAESGCM(tt.hexKey)
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestAESGCM_Roundtrip(t *testing.T) {
	c, err := NewAESGCM(testKey)
	require.NoError(t, err)

	sealed, err := c.Seal("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "payload")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.payload.sig", opened)
}

func TestAESGCM_UniqueNonces(t *testing.T) {
	c, err := NewAESGCM(testKey)
	require.NoError(t, err)

	a, err := c.Seal("same-token")
	require.NoError(t, err)
	b, err := c.Seal("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestAESGCM_OpenRejectsTampering(t *testing.T) {
	c, err := NewAESGCM(testKey)
	require.NoError(t, err)

	sealed, err := c.Seal("token")
	require.NoError(t, err)

	last := sealed[len(sealed)-1:]
	flipped := "0"
	if last == "0" {
		flipped = "1"
	}
	_, err = c.Open(sealed[:len(sealed)-1] + flipped)
	assert.Error(t, err)

	_, err = c.Open("abcd")
	assert.ErrorContains(t, err, "too short")

	_, err = c.Open(strings.Repeat("x", 40))
	assert.Error(t, err)
}

func TestAESGCM_WrongKeyCannotOpen(t *testing.T) {
	a, err := NewAESGCM(testKey)
	require.NoError(t, err)
	b, err := NewAESGCM(strings.Repeat("f", 64))
	require.NoError(t, err)

	sealed, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)
}
