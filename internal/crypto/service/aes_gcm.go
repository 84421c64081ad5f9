package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// AESGCMCipher implements AEAD using AES-256-GCM.
//
// Every Encrypt draws a fresh 12-byte nonce from crypto/rand. With random
// nonces a single key should seal well under 2^32 messages, which the key
// manager's rotation keeps far out of reach for short-lived tokens.
//
// The cipher is stateless after construction and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt seals plaintext and authenticates aad. The returned ciphertext has the
// 16-byte tag appended.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	return seal(a.aead, plaintext, aad)
}

// Decrypt opens ciphertext. Any mismatch in key, nonce, tag or aad returns
// ErrDecryptionFailed and no plaintext.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	return open(a.aead, ciphertext, nonce, aad)
}
