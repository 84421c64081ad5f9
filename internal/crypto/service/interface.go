// Package service provides the symmetric cryptography behind broker tokens: AEAD
// ciphers (AES-256-GCM, ChaCha20-Poly1305) and the rotating key manager.
package service

import (
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyResolver looks up a token key by its id.
//
// Implementations return a clone the caller owns and must Destroy, or an error
// wrapping cryptoDomain.ErrKeyNotFound. An id the resolver never issued should
// be reported as cryptoDomain.ErrUnknownKey.
type KeyResolver interface {
	KeyFor(kid string) (*cryptoDomain.KeyMaterial, error)
}

// KeyResolverFunc adapts a function to KeyResolver.
type KeyResolverFunc func(kid string) (*cryptoDomain.KeyMaterial, error)

// KeyFor calls f(kid).
func (f KeyResolverFunc) KeyFor(kid string) (*cryptoDomain.KeyMaterial, error) {
	return f(kid)
}

// StaticKeyResolver resolves exactly one key. Useful for tests and for one-shot
// tokens sealed under a key that never rotates.
func StaticKeyResolver(key *cryptoDomain.KeyMaterial) KeyResolver {
	return KeyResolverFunc(func(kid string) (*cryptoDomain.KeyMaterial, error) {
		if key == nil || key.ID != kid {
			return nil, cryptoDomain.ErrUnknownKey
		}
		return key.Clone(), nil
	})
}
