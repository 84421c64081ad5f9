package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// SignOptions holds the flags of the sign command.
type SignOptions struct {
	Secret    string
	Caller    string
	Reason    string
	DataFile  string
	Algorithm string
	UseCache  bool
}

// RunSign signs the contents of DataFile with the PEM private key stored under
// Secret and prints {"signature", "algorithm"} as JSON. A DataFile of "-"
// reads the data from stdin.
func RunSign(
	ctx context.Context,
	secrets SecretGetter,
	gate Authorizer,
	tokens TokenIssuer,
	actions actionUseCase.ActionUseCase,
	logger *slog.Logger,
	streams IOTuple,
	opts SignOptions,
) error {
	data, err := readDataFile(opts.DataFile, streams.Reader)
	if err != nil {
		return err
	}

	secret, token, release, err := authorizeAndIssue(
		ctx, secrets, gate, tokens, logger, opts.Secret, opts.Caller, opts.Reason, opts.UseCache,
	)
	if err != nil {
		return err
	}
	defer secret.Destroy()
	defer release()

	result, err := actions.SignWithToken(ctx, token, &actionDomain.SignRequest{
		Data:      data,
		Algorithm: opts.Algorithm,
	}, tokenDomain.RequireSubject(opts.Caller))
	if err != nil {
		return err
	}

	logger.Debug("delegated sign finished",
		slog.String("secret", opts.Secret),
		slog.String("algorithm", result.Algorithm),
	)
	return writeJSON(streams.Writer, result)
}

func readDataFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--data-file is required")
	}
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read data from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return data, nil
}
