package domain

import (
	"log/slog"
)

const redacted = "[REDACTED]"

// Secret is an owned buffer holding secret bytes (a token payload value, a PEM
// private key, an API key read from a backend).
//
// Secret takes ownership of the slice handed to NewSecret; callers must not keep
// using it. Destroy zeroes the buffer and must be deferred on every path that
// creates a Secret. Formatting a Secret with fmt or slog never prints the value.
type Secret struct {
	b []byte
}

// NewSecret wraps b without copying.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// NewSecretString copies s into a new Secret.
func NewSecretString(s string) *Secret {
	return &Secret{b: []byte(s)}
}

// Bytes returns the underlying buffer. It is invalidated by Destroy.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Reveal returns the value as a string for APIs that only accept strings, such
// as process arguments. The returned string cannot be zeroed, so its scope
// should be kept to the call that needs it.
func (s *Secret) Reveal() string {
	if s == nil {
		return ""
	}
	return string(s.b)
}

// Len returns the secret length in bytes.
func (s *Secret) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Destroyed reports whether Destroy has been called.
func (s *Secret) Destroyed() bool {
	return s == nil || s.b == nil
}

// Destroy zeroes and releases the buffer. Calling it more than once is safe.
func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	Zero(s.b)
	s.b = nil
}

// String implements fmt.Stringer without exposing the value.
func (s *Secret) String() string {
	return redacted
}

// GoString implements fmt.GoStringer without exposing the value.
func (s *Secret) GoString() string {
	return redacted
}

// LogValue implements slog.LogValuer without exposing the value.
func (s *Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalJSON keeps a Secret from being serialized by accident.
func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
