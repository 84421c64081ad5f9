// Package usecase runs the broker token pipeline: minting tokens under the
// current key, opening them (decrypt, revocation check, validation) and
// revoking them.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// KeyProvider is the view of the key manager the token pipeline needs.
type KeyProvider interface {
	// CurrentKey returns a clone of the key new tokens are sealed with.
	CurrentKey() (*cryptoDomain.KeyMaterial, error)

	// KeyFor returns a clone of the live key with id kid, or ErrKeyNotFound.
	KeyFor(kid string) (*cryptoDomain.KeyMaterial, error)

	// Algorithm is the AEAD new tokens use.
	Algorithm() cryptoDomain.Algorithm

	// Rotate replaces the current key and starts the previous key's grace period.
	Rotate() error
}

// TokenUseCase mints, opens and revokes broker tokens.
type TokenUseCase interface {
	// Issue seals input.Secret into a token under the current key.
	Issue(ctx context.Context, input *tokenDomain.IssueTokenInput) (*tokenDomain.IssueTokenOutput, error)

	// Open runs the full pipeline: authenticated decryption, revocation check,
	// then expiry and policy validation. Any failure short-circuits and no
	// secret is returned. The caller owns the claims and must Destroy them.
	Open(ctx context.Context, token string, policies ...tokenDomain.Policy) (*tokenDomain.Claims, error)

	// Revoke blocks the token id so Open rejects it with ErrRevoked. Revoking
	// twice is a no-op.
	Revoke(ctx context.Context, token string) error

	// Rotate rotates the signing key.
	Rotate(ctx context.Context) error

	// Purge drops revocation entries whose tokens have expired.
	Purge(ctx context.Context) (int64, error)
}
