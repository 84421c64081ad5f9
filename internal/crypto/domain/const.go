// Package domain defines the key material, algorithms and secret buffers shared by
// the token engine and the delegated actions.
package domain

import "strings"

// KeySize is the length in bytes of every symmetric token key.
const KeySize = 32

// Algorithm represents the AEAD construction used to seal token payloads.
//
// Both supported algorithms use a 256-bit key, a 12-byte random nonce and a
// 16-byte authentication tag, so a token sealed under either one is equally
// tamper-evident. The algorithm name travels in the token header as "enc".
type Algorithm string

const (
	// AESGCM represents AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305. Preferred where AES is not hardware accelerated.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// ParseAlgorithm converts a configuration value into an Algorithm.
// Matching is case-insensitive; unknown names return ErrUnsupportedAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
