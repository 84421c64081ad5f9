package domain

import (
	"github.com/allisson/secretbroker/internal/errors"
)

// Key management and cipher error definitions.
//
// These wrap the standard errors from internal/errors so outer layers can map
// them without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a symmetric key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidGracePeriod indicates a negative rotation grace period.
	ErrInvalidGracePeriod = errors.Wrap(errors.ErrInvalidInput, "invalid grace period")

	// ErrDecryptionFailed indicates an AEAD open failed.
	//
	// The cause (wrong key, modified ciphertext, modified associated data, bad
	// nonce) is deliberately not distinguished.
	ErrDecryptionFailed = errors.Wrap(errors.ErrUnauthorized, "decryption failed")

	// ErrKeyNotFound indicates no live key matches the requested key id, either
	// because the id is unknown or because its grace period has elapsed.
	ErrKeyNotFound = errors.Wrap(errors.ErrUnauthorized, "key not found")

	// ErrUnknownKey is the ErrKeyNotFound case for an id that was never issued,
	// as opposed to one that was issued and has since been retired.
	ErrUnknownKey = errors.Wrap(ErrKeyNotFound, "unknown key id")

	// ErrKeyManagerClosed indicates the key manager has been shut down and zeroed.
	ErrKeyManagerClosed = errors.Wrap(errors.ErrUnavailable, "key manager closed")
)
