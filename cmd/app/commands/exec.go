package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// ExecOptions holds the flags of the exec command.
type ExecOptions struct {
	Secret      string
	EnvVar      string
	Caller      string
	Reason      string
	Placeholder string
	UseCache    bool
	NoRedact    bool
	Timeout     time.Duration
	Command     []string
}

// RunExec runs a command with a backend secret injected into its environment.
//
// The secret is loaded, the operator approves the caller, and a single-use
// token carrying the secret is issued and handed to the delegated exec
// pipeline. The child's output is relayed with secret occurrences redacted
// unless NoRedact is set. The returned exit code mirrors the child's.
func RunExec(
	ctx context.Context,
	secrets SecretGetter,
	gate Authorizer,
	tokens TokenIssuer,
	actions actionUseCase.ActionUseCase,
	logger *slog.Logger,
	streams IOTuple,
	opts ExecOptions,
) (int, error) {
	if len(opts.Command) == 0 {
		return 1, fmt.Errorf("missing command, pass it after --")
	}
	if opts.EnvVar == "" {
		return 1, fmt.Errorf("--env is required")
	}
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = actionDomain.DefaultPlaceholder
	}

	secret, token, release, err := authorizeAndIssue(
		ctx, secrets, gate, tokens, logger, opts.Secret, opts.Caller, opts.Reason, opts.UseCache,
	)
	if err != nil {
		return 1, err
	}
	defer secret.Destroy()
	defer release()

	result, err := actions.ExecWithToken(ctx, token, &actionDomain.ExecRequest{
		Command: opts.Command[0],
		Args:    opts.Command[1:],
		Env:     map[string]string{opts.EnvVar: placeholder},
		Timeout: opts.Timeout,
	}, tokenDomain.RequireSubject(opts.Caller))
	if err != nil {
		return 1, err
	}

	stdout, stderr := result.Stdout, result.Stderr
	if !opts.NoRedact {
		stdout = redact(stdout, secret)
		stderr = redact(stderr, secret)
	}
	if err := relay(streams, stdout, stderr); err != nil {
		return 1, err
	}

	logger.Debug("delegated exec finished",
		slog.String("secret", opts.Secret),
		slog.String("command", opts.Command[0]),
		slog.Int("exit_code", result.ExitCode),
	)
	return result.ExitCode, nil
}

func relay(streams IOTuple, stdout, stderr string) error {
	if _, err := io.WriteString(streams.Writer, stdout); err != nil {
		return fmt.Errorf("failed to write stdout: %w", err)
	}
	if _, err := io.WriteString(streams.ErrWriter, stderr); err != nil {
		return fmt.Errorf("failed to write stderr: %w", err)
	}
	return nil
}
