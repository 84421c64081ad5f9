package domain

import (
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

const (
	// TokenType is the "typ" value of every broker token.
	TokenType = "sbt"

	// KeyAlgorithmDirect is the "alg" value: the payload is sealed directly
	// with the symmetric key named by kid, no key wrapping.
	KeyAlgorithmDirect = "dir"
)

// TokenHeader is the unencrypted, authenticated part of a token.
//
// It is readable without any key so consumers can pick the decryption key and
// check revocation before paying for decryption. The encoded header is the
// AEAD associated data, so changing any field makes decryption fail.
type TokenHeader struct {
	KeyID      string                 `json:"kid"`
	TokenID    string                 `json:"jti"`
	Algorithm  string                 `json:"alg"`
	Encryption cryptoDomain.Algorithm `json:"enc"`
	Type       string                 `json:"typ"`
}
