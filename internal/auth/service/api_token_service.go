package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/secretbroker/internal/errors"
)

// apiTokenSize is the number of random bytes in a generated token.
const apiTokenSize = 32

// apiTokenService implements APITokenService using Argon2id.
type apiTokenService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateToken creates a 32-byte random token, base64url encoded.
func (s *apiTokenService) GenerateToken() (string, string, error) {
	randomBytes := make([]byte, apiTokenSize)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate api token")
	}

	plainToken := base64.RawURLEncoding.EncodeToString(randomBytes)
	tokenHash, err := s.HashToken(plainToken)
	if err != nil {
		return "", "", err
	}
	return plainToken, tokenHash, nil
}

// HashToken hashes plainToken into a PHC formatted Argon2id string.
func (s *apiTokenService) HashToken(plainToken string) (string, error) {
	tokenHash, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api token")
	}
	return tokenHash, nil
}

// CompareToken verifies plainToken against tokenHash. Malformed hashes never match.
func (s *apiTokenService) CompareToken(plainToken string, tokenHash string) bool {
	ok, err := s.hasher.Verify([]byte(plainToken), tokenHash)
	if err != nil {
		return false
	}
	return ok
}

// NewAPITokenService creates an APITokenService with the Moderate Argon2id policy.
func NewAPITokenService() APITokenService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// Only reachable with an invalid built-in policy.
		panic(err)
	}

	return &apiTokenService{
		hasher: hasher,
	}
}
