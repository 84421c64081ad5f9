package domain

import "context"

// Keeper seals and opens small blobs with a key held by an external KMS or a
// local key URL. *secrets.Keeper from gocloud.dev satisfies it.
type Keeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
