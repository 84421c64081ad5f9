package domain

import (
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	"github.com/allisson/secretbroker/internal/errors"
)

// Token rejection errors.
//
// Every rejection wraps errors.ErrUnauthorized or errors.ErrForbidden. The
// outer layers render all ErrUnauthorized rejections with one message so a
// caller cannot learn which check failed.
var (
	// ErrKeyNotFound indicates no live key matches the token's kid: the id is
	// unknown or the grace period of the key it names has elapsed.
	ErrKeyNotFound = cryptoDomain.ErrKeyNotFound

	// ErrAuthenticationFailed indicates the token could not be authenticated:
	// bad encoding, modified header, modified ciphertext or wrong key.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrMalformedToken indicates the token is not three base64url segments
	// with a decodable header. It is a kind of ErrAuthenticationFailed.
	ErrMalformedToken = errors.Wrap(ErrAuthenticationFailed, "malformed token")

	// ErrExpired indicates the claims' expiry is not in the future.
	ErrExpired = errors.Wrap(errors.ErrUnauthorized, "token expired")

	// ErrRevoked indicates the token id is in the revocation registry.
	ErrRevoked = errors.Wrap(errors.ErrUnauthorized, "token revoked")

	// ErrPolicyViolation indicates a caller-supplied claim constraint failed.
	ErrPolicyViolation = errors.Wrap(errors.ErrForbidden, "policy violation")

	// ErrInvalidClaims indicates claims cannot be issued as given.
	ErrInvalidClaims = errors.Wrap(errors.ErrInvalidInput, "invalid claims")
)

// PublicMessage is the only text shown to callers for a rejected token.
const PublicMessage = "invalid or expired token"
