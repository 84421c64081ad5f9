// Package usecase gates the delegated actions behind the token pipeline: a
// token is opened, its secret is handed to the action, and the secret is
// destroyed as soon as the action returns.
package usecase

import (
	"context"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// TokenOpener opens broker tokens. It is satisfied by the token use case.
type TokenOpener interface {
	Open(ctx context.Context, token string, policies ...tokenDomain.Policy) (*tokenDomain.Claims, error)
}

// Executor runs a command with a secret injected.
type Executor interface {
	Exec(
		ctx context.Context,
		secret *cryptoDomain.Secret,
		req *actionDomain.ExecRequest,
	) (*actionDomain.ExecResult, error)
}

// Signer signs data with a secret private key.
type Signer interface {
	Sign(secret *cryptoDomain.Secret, req *actionDomain.SignRequest) (*actionDomain.SignResult, error)
}

// ActionUseCase performs delegated actions on behalf of a token holder. The
// caller never sees the secret; it only gets the action's result.
type ActionUseCase interface {
	// ExecWithToken opens token and runs req with its secret substituted for
	// the placeholder. Token rejections are returned unchanged.
	ExecWithToken(
		ctx context.Context,
		token string,
		req *actionDomain.ExecRequest,
		policies ...tokenDomain.Policy,
	) (*actionDomain.ExecResult, error)

	// SignWithToken opens token and signs req.Data with the PEM private key it carries.
	SignWithToken(
		ctx context.Context,
		token string,
		req *actionDomain.SignRequest,
		policies ...tokenDomain.Policy,
	) (*actionDomain.SignResult, error)
}
