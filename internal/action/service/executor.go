// Package service implements the delegated actions: running a command with a
// secret injected into its arguments or environment, and signing data with a
// secret private key.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// waitDelay bounds how long Wait keeps draining output pipes after the child
// exits or is killed, in case a grandchild still holds them open.
const waitDelay = 2 * time.Second

// Executor runs commands on a secret's behalf.
//
// The secret is substituted into copies of the request's arguments and
// environment values only, never into the command path. Output is buffered in
// memory without a cap. Exec blocks until the command exits, the timeout
// fires, or ctx is cancelled; cancellation and timeout kill the command's
// whole process group where the platform supports it.
type Executor struct {
	placeholder    string
	defaultTimeout time.Duration
	logger         *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPlaceholder overrides the marker replaced by the secret.
func WithPlaceholder(placeholder string) ExecutorOption {
	return func(e *Executor) {
		if placeholder != "" {
			e.placeholder = placeholder
		}
	}
}

// WithDefaultTimeout sets the timeout applied when a request has none.
func WithDefaultTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.defaultTimeout = timeout
	}
}

// WithExecutorLogger sets the logger for spawn and exit events.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an Executor using DefaultPlaceholder and no default timeout.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		placeholder: actionDomain.DefaultPlaceholder,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Placeholder returns the marker this executor substitutes.
func (e *Executor) Placeholder() string {
	return e.placeholder
}

// Exec runs req with secret substituted for every placeholder.
//
// It returns ErrSpawnFailure when the command cannot start and
// ErrExecutionTimeout when the deadline passes first; in that case the command
// is killed and any captured output is dropped. A command that runs and exits
// non-zero is not an error: its code is in the result.
func (e *Executor) Exec(
	ctx context.Context,
	secret *cryptoDomain.Secret,
	req *actionDomain.ExecRequest,
) (*actionDomain.ExecResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = e.defaultTimeout
	}
	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	value := secret.Reveal()
	cmd := exec.CommandContext(execCtx, req.Command, e.substituteArgs(req.Args, value)...)
	cmd.Dir = req.Dir
	if req.Env != nil {
		cmd.Env = append(os.Environ(), e.substituteEnv(req.Env, value)...)
	}
	if req.Stdin != nil {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	configureProcessGroup(cmd)
	killed := trackKill(cmd)
	cmd.WaitDelay = waitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		e.logger.Debug("command spawn failed", slog.String("command", req.Command))
		return nil, fmt.Errorf("%w: %w", actionDomain.ErrSpawnFailure, sanitizeStartError(err))
	}
	e.logger.Debug("command started", slog.String("command", req.Command), slog.Int("pid", cmd.Process.Pid))

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	// Only a command that cancellation actually killed has timed out.
	if killed.Load() && waitErr != nil {
		ctxErr := execCtx.Err()
		stdout.Reset()
		stderr.Reset()
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			e.logger.Debug("command timed out",
				slog.String("command", req.Command),
				slog.Duration("timeout", timeout),
			)
			return nil, actionDomain.ErrExecutionTimeout
		}
		return nil, ctxErr
	}

	exitCode, err := exitCodeOf(cmd, waitErr)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("command finished",
		slog.String("command", req.Command),
		slog.Int("exit_code", exitCode),
		slog.Duration("elapsed", elapsed),
	)

	return &actionDomain.ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// trackKill wraps cmd.Cancel and reports whether cancellation delivered its
// kill signal.
func trackKill(cmd *exec.Cmd) *atomic.Bool {
	var killed atomic.Bool
	cancel := cmd.Cancel
	cmd.Cancel = func() error {
		err := cancel()
		if err == nil {
			killed.Store(true)
		}
		return err
	}
	return &killed
}

func (e *Executor) substituteArgs(args []string, value string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = strings.ReplaceAll(arg, e.placeholder, value)
	}
	return out
}

// substituteEnv renders env as KEY=VALUE pairs in key order so the child sees a
// deterministic environment.
func (e *Executor) substituteEnv(env map[string]string, value string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, key := range keys {
		out = append(out, key+"="+strings.ReplaceAll(env[key], e.placeholder, value))
	}
	return out
}

// exitCodeOf returns the child's exit code, or 1 when it ended without one.
func exitCodeOf(cmd *exec.Cmd, waitErr error) (int, error) {
	var exitErr *exec.ExitError
	switch {
	case waitErr == nil, errors.Is(waitErr, exec.ErrWaitDelay):
	case errors.As(waitErr, &exitErr):
	default:
		return 0, fmt.Errorf("failed to wait for command: %w", waitErr)
	}

	if cmd.ProcessState == nil {
		return 1, nil
	}
	code := cmd.ProcessState.ExitCode()
	if code < 0 {
		return 1, nil
	}
	return code, nil
}

// sanitizeStartError keeps the failure reason but drops anything that may echo
// arguments. exec.Error and fs.PathError only name the binary or directory.
func sanitizeStartError(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr.Err
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return errors.New("process could not be started")
}
