// Package domain defines the delegated actions that consume a secret on the
// caller's behalf: running a command with the secret injected, and signing
// data with a secret private key.
package domain

import (
	"strings"
	"time"
)

// DefaultPlaceholder is the marker replaced by the secret in exec arguments and
// environment values.
const DefaultPlaceholder = "{{secret}}"

// ExecRequest describes a command to run with the secret injected.
//
// Args and Env values are templates: every occurrence of the placeholder is
// replaced by the secret at spawn time, and the request itself is never
// modified. A nil Env inherits the broker's environment unchanged; a non-nil
// Env is overlaid on it. A nil Stdin gives the command an empty stdin.
// A zero Timeout falls back to the executor default.
type ExecRequest struct {
	Command string
	Args    []string
	Env     map[string]string
	Dir     string
	Stdin   []byte
	Timeout time.Duration
}

// Validate checks the request has a command.
func (r *ExecRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.Command) == "" {
		return ErrInvalidRequest
	}
	if r.Timeout < 0 {
		return ErrInvalidRequest
	}
	return nil
}

// ExecResult is the captured outcome of a finished command.
//
// ExitCode mirrors the child's exit status, or 1 when the child ended without
// one (killed by a signal).
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}
