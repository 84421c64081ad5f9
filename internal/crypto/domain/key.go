package domain

import (
	"time"
)

// KeyMaterial is a symmetric token key owned by the key manager.
//
// ID is a UUIDv7, so it sorts by creation time and reveals when the key was
// minted without revealing anything about the key bytes. Key is exactly
// KeySize bytes. A KeyMaterial is never mutated after creation except by
// Destroy, which the key manager calls when the key leaves the live set.
type KeyMaterial struct {
	ID        string
	Key       []byte
	CreatedAt time.Time
}

// Destroy zeroes the key bytes. The ID and CreatedAt stay readable for logging.
func (k *KeyMaterial) Destroy() {
	if k == nil {
		return
	}
	Zero(k.Key)
}

// Clone returns a deep copy. Holders of a clone own it and must Destroy it.
func (k *KeyMaterial) Clone() *KeyMaterial {
	if k == nil {
		return nil
	}
	key := make([]byte, len(k.Key))
	copy(key, k.Key)
	return &KeyMaterial{ID: k.ID, Key: key, CreatedAt: k.CreatedAt}
}

// KeyState is a point-in-time view of the live keys.
//
// Previous, when set, is strictly older than Current. RotatedAt is the instant
// Current replaced Previous and starts the grace period clock. The key bytes
// are not part of the view.
type KeyState struct {
	CurrentID  string
	PreviousID string
	RotatedAt  time.Time
}

// HasPrevious reports whether a previous key is still held.
func (s KeyState) HasPrevious() bool {
	return s.PreviousID != ""
}

// KeyRotationConfig governs how long the previous key keeps decrypting after a rotation.
type KeyRotationConfig struct {
	GracePeriod time.Duration
	Algorithm   Algorithm
}

// Validate checks the rotation config and fills in the default algorithm.
func (c *KeyRotationConfig) Validate() error {
	if c.GracePeriod < 0 {
		return ErrInvalidGracePeriod
	}
	if c.Algorithm == "" {
		c.Algorithm = AESGCM
	}
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	return nil
}
