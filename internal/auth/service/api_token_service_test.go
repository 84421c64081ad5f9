package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPITokenService(t *testing.T) {
	service := NewAPITokenService()
	assert.NotNil(t, service)
	assert.IsType(t, &apiTokenService{}, service)
}

func TestAPITokenService_GenerateToken(t *testing.T) {
	service := NewAPITokenService()

	t.Run("Success_GeneratesVerifiableToken", func(t *testing.T) {
		plainToken, tokenHash, err := service.GenerateToken()
		require.NoError(t, err)

		decoded, err := base64.RawURLEncoding.DecodeString(plainToken)
		require.NoError(t, err)
		assert.Len(t, decoded, apiTokenSize)

		assert.Contains(t, tokenHash, "$argon2id$")
		assert.True(t, service.CompareToken(plainToken, tokenHash))
	})

	t.Run("Success_GeneratesUniqueTokens", func(t *testing.T) {
		plain1, hash1, err := service.GenerateToken()
		require.NoError(t, err)
		plain2, hash2, err := service.GenerateToken()
		require.NoError(t, err)

		assert.NotEqual(t, plain1, plain2)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestAPITokenService_CompareToken(t *testing.T) {
	service := NewAPITokenService()

	tokenHash, err := service.HashToken("correct-token")
	require.NoError(t, err)

	tests := []struct {
		name      string
		plain     string
		hash      string
		wantMatch bool
	}{
		{name: "correct token", plain: "correct-token", hash: tokenHash, wantMatch: true},
		{name: "wrong token", plain: "wrong-token", hash: tokenHash},
		{name: "empty token", plain: "", hash: tokenHash},
		{name: "different case", plain: "CORRECT-TOKEN", hash: tokenHash},
		{name: "malformed hash", plain: "correct-token", hash: "invalid-hash-format"},
		{name: "empty hash", plain: "correct-token", hash: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, service.CompareToken(tt.plain, tt.hash))
		})
	}
}

func TestAPITokenService_HashToken_SaltsEveryHash(t *testing.T) {
	service := NewAPITokenService()

	hash1, err := service.HashToken("same-token")
	require.NoError(t, err)
	hash2, err := service.HashToken("same-token")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, service.CompareToken("same-token", hash1))
	assert.True(t, service.CompareToken("same-token", hash2))
}
