package backend

import (
	"bytes"
	"context"
	"slices"
	"sync"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// MemoryBackend keeps secrets in process memory. Values are copied on the way
// in and on the way out, and zeroed on Delete and Close.
type MemoryBackend struct {
	mu      sync.RWMutex
	secrets map[string][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{secrets: make(map[string][]byte)}
}

// Get returns a copy of the value stored under name.
func (m *MemoryBackend) Get(_ context.Context, name string) (*cryptoDomain.Secret, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.secrets[name]
	if !ok {
		return nil, ErrSecretNotFound
	}
	return cryptoDomain.NewSecret(bytes.Clone(value)), nil
}

// Set stores a copy of value under name.
func (m *MemoryBackend) Set(_ context.Context, name string, value []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.secrets[name]; ok {
		cryptoDomain.Zero(old)
	}
	m.secrets[name] = bytes.Clone(value)
	return nil
}

// Delete zeroes and removes name.
func (m *MemoryBackend) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.secrets[name]
	if !ok {
		return ErrSecretNotFound
	}
	cryptoDomain.Zero(value)
	delete(m.secrets, name)
	return nil
}

// List returns the stored names sorted.
func (m *MemoryBackend) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.secrets))
	for name := range m.secrets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close zeroes every stored value.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, value := range m.secrets {
		cryptoDomain.Zero(value)
		delete(m.secrets, name)
	}
	return nil
}
