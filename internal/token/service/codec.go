// Package service implements the broker token engine: the AEAD token codec, the
// claims validator and the in-memory revocation registry.
package service

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
	"github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// Strict decoding rejects non-zero padding bits, so every character of a
// segment is significant.
var b64 = base64.RawURLEncoding.Strict()

// Codec seals claims into tokens and opens them again.
//
// Wire format, three base64url segments without padding:
//
//	header "." nonce "." ciphertext
//
// header is the JSON TokenHeader. The encoded header segment is passed to the
// AEAD as associated data, so it is authenticated without being encrypted.
// ciphertext carries the JSON claims payload with the AEAD tag appended.
type Codec struct {
	aeadManager cryptoService.AEADManager
}

// NewCodec creates a Codec that builds ciphers through aeadManager.
func NewCodec(aeadManager cryptoService.AEADManager) *Codec {
	return &Codec{aeadManager: aeadManager}
}

// CreateToken seals claims under key using alg. A missing claims.ID is filled
// with a fresh UUIDv7 before sealing.
func (c *Codec) CreateToken(
	claims *tokenDomain.Claims,
	key *cryptoDomain.KeyMaterial,
	alg cryptoDomain.Algorithm,
) (string, error) {
	if claims == nil || claims.Value.Destroyed() {
		return "", errors.Wrap(tokenDomain.ErrInvalidClaims, "missing secret value")
	}
	if claims.ExpiresAt.IsZero() {
		return "", errors.Wrap(tokenDomain.ErrInvalidClaims, "missing expiry")
	}
	if key == nil || len(key.Key) == 0 {
		return "", errors.Wrap(tokenDomain.ErrInvalidClaims, "missing token key")
	}
	if claims.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", errors.Wrap(err, "failed to generate token id")
		}
		claims.ID = id.String()
	}

	header := tokenDomain.TokenHeader{
		KeyID:      key.ID,
		TokenID:    claims.ID,
		Algorithm:  tokenDomain.KeyAlgorithmDirect,
		Encryption: alg,
		Type:       tokenDomain.TokenType,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode token header")
	}
	encodedHeader := b64.EncodeToString(headerJSON)

	payload, err := claims.EncodePayload()
	if err != nil {
		return "", errors.Wrap(err, "failed to encode claims")
	}
	defer cryptoDomain.Zero(payload)

	cipher, err := c.aeadManager.CreateCipher(key.Key, alg)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := cipher.Encrypt(payload, []byte(encodedHeader))
	if err != nil {
		return "", errors.Wrap(err, "failed to seal claims")
	}

	return encodedHeader + "." + b64.EncodeToString(nonce) + "." + b64.EncodeToString(ciphertext), nil
}

// ParseHeader decodes only the header segment.
func (c *Codec) ParseHeader(token string) (*tokenDomain.TokenHeader, error) {
	header, _, err := splitToken(token)
	return header, err
}

// ExtractKid returns the key id from the header without decrypting anything.
func (c *Codec) ExtractKid(token string) (string, error) {
	header, err := c.ParseHeader(token)
	if err != nil {
		return "", err
	}
	return header.KeyID, nil
}

// DecryptToken authenticates and opens token with the key the resolver returns for its kid.
//
// It returns ErrKeyNotFound when the header's kid names a key the resolver
// issued but no longer holds, and ErrAuthenticationFailed for every other
// failure, including a kid the resolver never issued. The caller owns the
// returned claims and must Destroy them.
func (c *Codec) DecryptToken(token string, resolver cryptoService.KeyResolver) (*tokenDomain.Claims, error) {
	header, segments, err := splitToken(token)
	if err != nil {
		return nil, err
	}

	nonce, err := b64.DecodeString(segments[1])
	if err != nil {
		return nil, tokenDomain.ErrMalformedToken
	}
	ciphertext, err := b64.DecodeString(segments[2])
	if err != nil {
		return nil, tokenDomain.ErrMalformedToken
	}

	key, err := resolver.KeyFor(header.KeyID)
	switch {
	case errors.Is(err, cryptoDomain.ErrUnknownKey):
		return nil, tokenDomain.ErrAuthenticationFailed
	case errors.Is(err, cryptoDomain.ErrKeyNotFound):
		return nil, tokenDomain.ErrKeyNotFound
	case err != nil:
		return nil, err
	}
	defer key.Destroy()

	cipher, err := c.aeadManager.CreateCipher(key.Key, header.Encryption)
	if err != nil {
		return nil, tokenDomain.ErrAuthenticationFailed
	}

	payload, err := cipher.Decrypt(ciphertext, nonce, []byte(segments[0]))
	if err != nil {
		return nil, tokenDomain.ErrAuthenticationFailed
	}
	defer cryptoDomain.Zero(payload)

	claims, err := tokenDomain.DecodePayload(header.TokenID, payload)
	if err != nil {
		return nil, tokenDomain.ErrAuthenticationFailed
	}
	return claims, nil
}

func splitToken(token string) (*tokenDomain.TokenHeader, []string, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, nil, tokenDomain.ErrMalformedToken
	}

	headerJSON, err := b64.DecodeString(segments[0])
	if err != nil {
		return nil, nil, tokenDomain.ErrMalformedToken
	}

	var header tokenDomain.TokenHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, tokenDomain.ErrMalformedToken
	}
	if header.KeyID == "" || header.TokenID == "" || header.Type != tokenDomain.TokenType ||
		header.Algorithm != tokenDomain.KeyAlgorithmDirect {
		return nil, nil, tokenDomain.ErrMalformedToken
	}

	return &header, segments, nil
}
