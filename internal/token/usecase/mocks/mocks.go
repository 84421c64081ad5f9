// Package mocks provides testify mocks for the token use case and its collaborators.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of TokenUseCase.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.IssueTokenOutput), args.Error(1)
}

// Open mocks the Open method of TokenUseCase. Policies are not recorded.
func (m *MockTokenUseCase) Open(
	ctx context.Context,
	token string,
	policies ...tokenDomain.Policy,
) (*tokenDomain.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Claims), args.Error(1)
}

// Revoke mocks the Revoke method of TokenUseCase.
func (m *MockTokenUseCase) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Rotate mocks the Rotate method of TokenUseCase.
func (m *MockTokenUseCase) Rotate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Purge mocks the Purge method of TokenUseCase.
func (m *MockTokenUseCase) Purge(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRevocationRegistry is a mock implementation of RevocationRegistry.
type MockRevocationRegistry struct {
	mock.Mock
}

// Block mocks the Block method of RevocationRegistry.
func (m *MockRevocationRegistry) Block(ctx context.Context, entry tokenDomain.RevocationEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// IsBlocked mocks the IsBlocked method of RevocationRegistry.
func (m *MockRevocationRegistry) IsBlocked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// Clear mocks the Clear method of RevocationRegistry.
func (m *MockRevocationRegistry) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Purge mocks the Purge method of RevocationRegistry.
func (m *MockRevocationRegistry) Purge(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
