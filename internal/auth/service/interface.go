// Package service provides the API credential services: generation and
// Argon2id hashing of the bearer token that guards the HTTP API.
package service

// APITokenService generates and verifies API bearer tokens.
type APITokenService interface {
	// GenerateToken creates a new random bearer token. It returns the plain
	// token, shown once to the operator, and its hash for API_TOKEN_HASH.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token with Argon2id.
	HashToken(plainToken string) (string, error)

	// CompareToken reports whether plainToken matches tokenHash. The
	// comparison is constant-time.
	CompareToken(plainToken string, tokenHash string) bool
}
