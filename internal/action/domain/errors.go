package domain

import (
	"github.com/allisson/secretbroker/internal/errors"
)

// Delegated action error definitions.
//
// None of these messages ever include arguments, environment values or key
// material, since any of them may carry the substituted secret.
var (
	// ErrInvalidRequest indicates the action request is incomplete.
	ErrInvalidRequest = errors.Wrap(errors.ErrInvalidInput, "invalid action request")

	// ErrSpawnFailure indicates the command could not be started at all
	// (missing binary, permission denied, bad working directory).
	ErrSpawnFailure = errors.Wrap(errors.ErrUnavailable, "failed to start command")

	// ErrExecutionTimeout indicates the command outlived its deadline and was killed.
	ErrExecutionTimeout = errors.Wrap(errors.ErrTimeout, "command execution timed out")

	// ErrInvalidPrivateKey indicates the secret is not a parseable PEM private key.
	ErrInvalidPrivateKey = errors.Wrap(errors.ErrInvalidInput, "invalid private key")

	// ErrUnsupportedKeyType indicates a private key type that cannot sign here (for example X25519).
	ErrUnsupportedKeyType = errors.Wrap(errors.ErrUnsupported, "unsupported key type")

	// ErrUnsupportedDigest indicates an unknown digest override.
	ErrUnsupportedDigest = errors.Wrap(errors.ErrInvalidInput, "unsupported digest algorithm")
)
