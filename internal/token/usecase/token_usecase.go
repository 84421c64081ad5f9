package usecase

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	"github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
	tokenService "github.com/allisson/secretbroker/internal/token/service"
)

// Issuer is the iss claim of every token this broker mints.
const Issuer = "secretbroker"

// tokenUseCase implements TokenUseCase on top of the codec, the key manager
// and a revocation registry.
type tokenUseCase struct {
	codec      *tokenService.Codec
	keys       KeyProvider
	registry   tokenService.RevocationRegistry
	validator  *tokenService.ClaimsValidator
	defaultTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Issue seals a copy of the secret with exp = now + TTL.
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.IssueTokenOutput, error) {
	if input == nil || input.Secret.Destroyed() {
		return nil, errors.Wrap(tokenDomain.ErrInvalidClaims, "missing secret value")
	}
	ttl := input.TTL
	if ttl == 0 {
		ttl = t.defaultTTL
	}
	if ttl <= 0 {
		return nil, errors.Wrap(tokenDomain.ErrInvalidClaims, "ttl must be positive")
	}

	key, err := t.keys.CurrentKey()
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	now := t.now()
	claims := &tokenDomain.Claims{
		Value:     cryptoDomain.NewSecret(bytes.Clone(input.Secret.Bytes())),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Subject:   input.Subject,
		Issuer:    Issuer,
		Extra:     input.Extra,
	}
	defer claims.Destroy()

	token, err := t.codec.CreateToken(claims, key, t.keys.Algorithm())
	if err != nil {
		return nil, err
	}

	t.logger.Debug("token issued",
		slog.String("jti", claims.ID),
		slog.String("kid", key.ID),
		slog.String("sub", claims.Subject),
	)

	return &tokenDomain.IssueTokenOutput{
		Token:     token,
		KeyID:     key.ID,
		TokenID:   claims.ID,
		ExpiresAt: time.UnixMilli(claims.ExpiresAt.UnixMilli()).UTC(),
	}, nil
}

// Open decrypts token, rejects revoked ids, then validates expiry and policies.
func (t *tokenUseCase) Open(
	ctx context.Context,
	token string,
	policies ...tokenDomain.Policy,
) (*tokenDomain.Claims, error) {
	claims, err := t.codec.DecryptToken(token, t.keys)
	if err != nil {
		t.logger.Debug("token rejected", slog.Any("error", err))
		return nil, err
	}

	blocked, err := t.registry.IsBlocked(ctx, claims.ID)
	if err != nil {
		claims.Destroy()
		return nil, errors.Wrap(err, "failed to check revocation")
	}
	if blocked {
		claims.Destroy()
		t.logger.Debug("token rejected", slog.String("jti", claims.ID), slog.Any("error", tokenDomain.ErrRevoked))
		return nil, tokenDomain.ErrRevoked
	}

	if err := t.validator.Validate(claims, t.now(), policies...); err != nil {
		claims.Destroy()
		t.logger.Debug("token rejected", slog.String("jti", claims.ID), slog.Any("error", err))
		return nil, err
	}

	return claims, nil
}

// Revoke blocks the token id carried in token's header.
//
// The token has to authenticate first so that forged headers cannot fill the
// registry. A token whose key is already gone can never be opened again, so
// revoking it succeeds without recording anything.
func (t *tokenUseCase) Revoke(ctx context.Context, token string) error {
	claims, err := t.codec.DecryptToken(token, t.keys)
	if errors.Is(err, tokenDomain.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	defer claims.Destroy()

	entry := tokenDomain.RevocationEntry{
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt,
		RevokedAt: t.now().UTC(),
	}
	if err := t.registry.Block(ctx, entry); err != nil {
		return errors.Wrap(err, "failed to block token")
	}

	t.logger.Info("token revoked", slog.String("jti", claims.ID))
	return nil
}

// Rotate rotates the key manager's current key.
func (t *tokenUseCase) Rotate(ctx context.Context) error {
	return t.keys.Rotate()
}

// Purge removes revocation entries for tokens that have expired.
func (t *tokenUseCase) Purge(ctx context.Context) (int64, error) {
	purged, err := t.registry.Purge(ctx, t.now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge revocations")
	}
	if purged > 0 {
		t.logger.Debug("revocations purged", slog.Int64("count", purged))
	}
	return purged, nil
}

// NewTokenUseCase creates a TokenUseCase. defaultTTL applies to Issue calls
// that do not set one.
func NewTokenUseCase(
	codec *tokenService.Codec,
	keys KeyProvider,
	registry tokenService.RevocationRegistry,
	validator *tokenService.ClaimsValidator,
	defaultTTL time.Duration,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		codec:      codec,
		keys:       keys,
		registry:   registry,
		validator:  validator,
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}
}
