// Package backend stores the secrets the broker hands out.
//
// A Backend is a flat namespace of named byte values. The memory backend is
// for tests and ephemeral sessions; the keeper backend seals every value with
// a gocloud.dev/secrets keeper (a local base64key, Vault transit, or a cloud
// KMS) and keeps the ciphertext in one file per secret.
package backend

import (
	"context"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	"github.com/allisson/secretbroker/internal/errors"
	customValidation "github.com/allisson/secretbroker/internal/validation"
)

// Provider names accepted by BACKEND_PROVIDER.
const (
	ProviderMemory = "memory"
	ProviderKeeper = "keeper"
)

var (
	// ErrSecretNotFound indicates no secret is stored under the name.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrInvalidSecretName indicates a name that cannot be stored safely.
	ErrInvalidSecretName = errors.Wrap(errors.ErrInvalidInput, "invalid secret name")

	// ErrUnknownProvider indicates an unsupported BACKEND_PROVIDER value.
	ErrUnknownProvider = errors.Wrap(errors.ErrInvalidInput, "unknown backend provider")
)

// Backend is a named secret store.
type Backend interface {
	// Get returns a Secret the caller owns and must Destroy.
	Get(ctx context.Context, name string) (*cryptoDomain.Secret, error)

	// Set stores value under name, replacing any previous value. The backend
	// keeps its own copy.
	Set(ctx context.Context, name string, value []byte) error

	// Delete removes name. Deleting a missing name returns ErrSecretNotFound.
	Delete(ctx context.Context, name string) error

	// List returns every stored name in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases resources held by the backend.
	Close() error
}

// ValidateName checks that name is a legal secret name.
func ValidateName(name string) error {
	if err := validation.Validate(name, validation.Required, customValidation.SecretName); err != nil {
		return errors.Wrap(ErrInvalidSecretName, err.Error())
	}
	return nil
}
