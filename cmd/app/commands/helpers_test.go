package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	actionService "github.com/allisson/secretbroker/internal/action/service"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	"github.com/allisson/secretbroker/internal/approval"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
	tokenService "github.com/allisson/secretbroker/internal/token/service"
	tokenUseCase "github.com/allisson/secretbroker/internal/token/usecase"
)

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(ctx context.Context, secret, caller, reason string, useCache bool) error {
	args := m.Called(ctx, secret, caller, reason, useCache)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testIO(input string) (IOTuple, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return IOTuple{Reader: bytes.NewBufferString(input), Writer: stdout, ErrWriter: stderr}, stdout, stderr
}

// testPipeline wires the real token and action pipeline in memory.
type testPipeline struct {
	tokens  tokenUseCase.TokenUseCase
	actions actionUseCase.ActionUseCase
	gate    *approval.Gate
	caller  string
}

func newTestPipeline(t *testing.T, approve bool) *testPipeline {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	keyManager, err := cryptoService.NewKeyManager(cryptoDomain.KeyRotationConfig{GracePeriod: time.Minute})
	require.NoError(t, err)
	t.Cleanup(keyManager.Close)

	tokens := tokenUseCase.NewTokenUseCase(
		tokenService.NewCodec(cryptoService.NewAEADManager()),
		keyManager,
		tokenService.NewMemoryRevocationRegistry(),
		tokenService.NewClaimsValidator(),
		time.Minute,
		logger,
	)
	actions := actionUseCase.NewActionUseCase(
		tokens,
		actionService.NewExecutor(actionService.WithDefaultTimeout(10*time.Second)),
		actionService.NewSigner(),
		logger,
	)

	caller := filepath.Join(t.TempDir(), "deploy.sh")
	require.NoError(t, os.WriteFile(caller, []byte("#!/bin/sh\necho deploy\n"), 0o700))

	return &testPipeline{
		tokens:  tokens,
		actions: actions,
		gate:    approval.NewGate(approval.NewInspector(), nil, approval.StaticPrompter{Approve: approve}, logger),
		caller:  caller,
	}
}
