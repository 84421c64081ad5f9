package commands

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	actionMocks "github.com/allisson/secretbroker/internal/action/usecase/mocks"
	"github.com/allisson/secretbroker/internal/approval"
	"github.com/allisson/secretbroker/internal/backend"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
	tokenMocks "github.com/allisson/secretbroker/internal/token/usecase/mocks"
)

func TestRunExec(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	newStore := func(t *testing.T) *backend.MemoryBackend {
		store := backend.NewMemoryBackend()
		require.NoError(t, store.Set(ctx, "api-key", []byte("s3cr3t")))
		t.Cleanup(func() { _ = store.Close() })
		return store
	}

	opts := ExecOptions{
		Secret:  "api-key",
		EnvVar:  "API_KEY",
		Caller:  "/usr/local/bin/deploy",
		Reason:  "deploy",
		Timeout: time.Second,
		Command: []string{"curl", "-H", "x"},
	}

	t.Run("Success_RedactsOutputAndRevokesToken", func(t *testing.T) {
		gate := &mockAuthorizer{}
		tokens := &tokenMocks.MockTokenUseCase{}
		actions := &actionMocks.MockActionUseCase{}

		gate.On("Authorize", ctx, "api-key", opts.Caller, "deploy", false).Return(nil).Once()
		tokens.On("Issue", ctx, mock.MatchedBy(func(input *tokenDomain.IssueTokenInput) bool {
			return input.Secret.Reveal() == "s3cr3t" && input.Subject == opts.Caller &&
				input.Extra["secret"] == "api-key"
		})).Return(&tokenDomain.IssueTokenOutput{Token: "tok", TokenID: "jti"}, nil).Once()
		actions.On("ExecWithToken", ctx, "tok", mock.MatchedBy(func(req *actionDomain.ExecRequest) bool {
			return req.Command == "curl" && assert.ObjectsAreEqual([]string{"-H", "x"}, req.Args) &&
				req.Env["API_KEY"] == actionDomain.DefaultPlaceholder && req.Timeout == time.Second
		})).Return(&actionDomain.ExecResult{Stdout: "token=s3cr3t\n", Stderr: "warn s3cr3t", ExitCode: 3}, nil).Once()
		tokens.On("Revoke", mock.Anything, "tok").Return(nil).Once()

		streams, stdout, stderr := testIO("")
		code, err := RunExec(ctx, newStore(t), gate, tokens, actions, logger, streams, opts)

		require.NoError(t, err)
		assert.Equal(t, 3, code)
		assert.Equal(t, "token=[REDACTED]\n", stdout.String())
		assert.Equal(t, "warn [REDACTED]", stderr.String())
		gate.AssertExpectations(t)
		tokens.AssertExpectations(t)
		actions.AssertExpectations(t)
	})

	t.Run("Success_NoRedact", func(t *testing.T) {
		gate := &mockAuthorizer{}
		tokens := &tokenMocks.MockTokenUseCase{}
		actions := &actionMocks.MockActionUseCase{}

		gate.On("Authorize", ctx, "api-key", opts.Caller, "deploy", true).Return(nil).Once()
		tokens.On("Issue", ctx, mock.Anything).Return(&tokenDomain.IssueTokenOutput{Token: "tok"}, nil).Once()
		actions.On("ExecWithToken", ctx, "tok", mock.Anything).
			Return(&actionDomain.ExecResult{Stdout: "s3cr3t"}, nil).Once()
		tokens.On("Revoke", mock.Anything, "tok").Return(nil).Once()

		noRedact := opts
		noRedact.NoRedact = true
		noRedact.UseCache = true
		streams, stdout, _ := testIO("")
		code, err := RunExec(ctx, newStore(t), gate, tokens, actions, logger, streams, noRedact)

		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Equal(t, "s3cr3t", stdout.String())
	})

	t.Run("Error_Denied", func(t *testing.T) {
		gate := &mockAuthorizer{}
		tokens := &tokenMocks.MockTokenUseCase{}
		actions := &actionMocks.MockActionUseCase{}

		gate.On("Authorize", ctx, "api-key", opts.Caller, "deploy", false).Return(approval.ErrDenied).Once()

		streams, _, _ := testIO("")
		code, err := RunExec(ctx, newStore(t), gate, tokens, actions, logger, streams, opts)

		assert.ErrorIs(t, err, approval.ErrDenied)
		assert.Equal(t, 1, code)
		tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
		actions.AssertNotCalled(t, "ExecWithToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_SecretNotFound", func(t *testing.T) {
		gate := &mockAuthorizer{}

		missing := opts
		missing.Secret = "missing"
		streams, _, _ := testIO("")
		_, err := RunExec(ctx, newStore(t), gate, nil, nil, logger, streams, missing)

		assert.ErrorIs(t, err, backend.ErrSecretNotFound)
		gate.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_ExecFailureStillRevokes", func(t *testing.T) {
		gate := &mockAuthorizer{}
		tokens := &tokenMocks.MockTokenUseCase{}
		actions := &actionMocks.MockActionUseCase{}
		execErr := errors.New("spawn failed")

		gate.On("Authorize", ctx, "api-key", opts.Caller, "deploy", false).Return(nil).Once()
		tokens.On("Issue", ctx, mock.Anything).Return(&tokenDomain.IssueTokenOutput{Token: "tok"}, nil).Once()
		actions.On("ExecWithToken", ctx, "tok", mock.Anything).Return(nil, execErr).Once()
		tokens.On("Revoke", mock.Anything, "tok").Return(nil).Once()

		streams, _, _ := testIO("")
		code, err := RunExec(ctx, newStore(t), gate, tokens, actions, logger, streams, opts)

		assert.ErrorIs(t, err, execErr)
		assert.Equal(t, 1, code)
		tokens.AssertExpectations(t)
	})

	t.Run("Error_MissingCommandOrEnv", func(t *testing.T) {
		streams, _, _ := testIO("")

		noCommand := opts
		noCommand.Command = nil
		_, err := RunExec(ctx, newStore(t), nil, nil, nil, logger, streams, noCommand)
		assert.Error(t, err)

		noEnv := opts
		noEnv.EnvVar = ""
		_, err = RunExec(ctx, newStore(t), nil, nil, nil, logger, streams, noEnv)
		assert.Error(t, err)
	})
}

func TestRunExec_EndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	ctx := context.Background()
	pipeline := newTestPipeline(t, true)

	store := backend.NewMemoryBackend()
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Set(ctx, "api-key", []byte("s3cr3t")))

	opts := ExecOptions{
		Secret:  "api-key",
		EnvVar:  "API_KEY",
		Caller:  pipeline.caller,
		Command: []string{"sh", "-c", `printf 'key=%s' "$API_KEY"; exit 4`},
	}

	t.Run("injects and redacts", func(t *testing.T) {
		streams, stdout, _ := testIO("")
		code, err := RunExec(ctx, store, pipeline.gate, pipeline.tokens, pipeline.actions, testLogger(), streams, opts)

		require.NoError(t, err)
		assert.Equal(t, 4, code)
		assert.Equal(t, "key=[REDACTED]", stdout.String())
	})

	t.Run("denied", func(t *testing.T) {
		denying := newTestPipeline(t, false)
		denied := opts
		denied.Caller = denying.caller

		streams, stdout, _ := testIO("")
		_, err := RunExec(ctx, store, denying.gate, denying.tokens, denying.actions, testLogger(), streams, denied)

		assert.ErrorIs(t, err, approval.ErrDenied)
		assert.Empty(t, stdout.String())
	})
}
