// Package mocks provides testify mocks for the delegated action use case and
// its collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// MockActionUseCase is a mock implementation of ActionUseCase. Policies are
// not recorded.
type MockActionUseCase struct {
	mock.Mock
}

// ExecWithToken mocks the ExecWithToken method of ActionUseCase.
func (m *MockActionUseCase) ExecWithToken(
	ctx context.Context,
	token string,
	req *actionDomain.ExecRequest,
	policies ...tokenDomain.Policy,
) (*actionDomain.ExecResult, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionDomain.ExecResult), args.Error(1)
}

// SignWithToken mocks the SignWithToken method of ActionUseCase.
func (m *MockActionUseCase) SignWithToken(
	ctx context.Context,
	token string,
	req *actionDomain.SignRequest,
	policies ...tokenDomain.Policy,
) (*actionDomain.SignResult, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionDomain.SignResult), args.Error(1)
}

// MockExecutor is a mock implementation of Executor. The secret is passed to
// the matcher as its revealed string so expectations can assert on it.
type MockExecutor struct {
	mock.Mock
}

// Exec mocks the Exec method of Executor.
func (m *MockExecutor) Exec(
	ctx context.Context,
	secret *cryptoDomain.Secret,
	req *actionDomain.ExecRequest,
) (*actionDomain.ExecResult, error) {
	args := m.Called(ctx, secret.Reveal(), req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionDomain.ExecResult), args.Error(1)
}

// MockSigner is a mock implementation of Signer.
type MockSigner struct {
	mock.Mock
}

// Sign mocks the Sign method of Signer.
func (m *MockSigner) Sign(secret *cryptoDomain.Secret, req *actionDomain.SignRequest) (*actionDomain.SignResult, error) {
	args := m.Called(secret.Reveal(), req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actionDomain.SignResult), args.Error(1)
}
