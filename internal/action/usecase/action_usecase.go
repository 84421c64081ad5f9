package usecase

import (
	"context"
	"log/slog"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// actionUseCase implements ActionUseCase.
type actionUseCase struct {
	tokens   TokenOpener
	executor Executor
	signer   Signer
	logger   *slog.Logger
}

// ExecWithToken runs the token pipeline then the command. The claims, and with
// them the secret, are destroyed on every return path.
func (a *actionUseCase) ExecWithToken(
	ctx context.Context,
	token string,
	req *actionDomain.ExecRequest,
	policies ...tokenDomain.Policy,
) (*actionDomain.ExecResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	claims, err := a.tokens.Open(ctx, token, policies...)
	if err != nil {
		return nil, err
	}
	defer claims.Destroy()

	result, err := a.executor.Exec(ctx, claims.Value, req)
	if err != nil {
		return nil, err
	}

	a.logger.Info("delegated exec finished",
		slog.String("jti", claims.ID),
		slog.String("command", req.Command),
		slog.Int("exit_code", result.ExitCode),
	)
	return result, nil
}

// SignWithToken runs the token pipeline then signs. The claims are destroyed
// on every return path.
func (a *actionUseCase) SignWithToken(
	ctx context.Context,
	token string,
	req *actionDomain.SignRequest,
	policies ...tokenDomain.Policy,
) (*actionDomain.SignResult, error) {
	if req == nil {
		return nil, actionDomain.ErrInvalidRequest
	}

	claims, err := a.tokens.Open(ctx, token, policies...)
	if err != nil {
		return nil, err
	}
	defer claims.Destroy()

	result, err := a.signer.Sign(claims.Value, req)
	if err != nil {
		return nil, err
	}

	a.logger.Info("delegated sign finished",
		slog.String("jti", claims.ID),
		slog.String("algorithm", result.Algorithm),
	)
	return result, nil
}

// NewActionUseCase creates an ActionUseCase.
func NewActionUseCase(tokens TokenOpener, executor Executor, signer Signer, logger *slog.Logger) ActionUseCase {
	return &actionUseCase{
		tokens:   tokens,
		executor: executor,
		signer:   signer,
		logger:   logger,
	}
}
