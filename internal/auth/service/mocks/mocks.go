// Package mocks provides mock implementations of the auth services for testing.
package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockAPITokenService is a mock implementation of service.APITokenService.
type MockAPITokenService struct {
	mock.Mock
}

// GenerateToken mocks the GenerateToken method.
func (m *MockAPITokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

// HashToken mocks the HashToken method.
func (m *MockAPITokenService) HashToken(plainToken string) (string, error) {
	args := m.Called(plainToken)
	return args.String(0), args.Error(1)
}

// CompareToken mocks the CompareToken method.
func (m *MockAPITokenService) CompareToken(plainToken string, tokenHash string) bool {
	args := m.Called(plainToken, tokenHash)
	return args.Bool(0)
}
