// Package approval decides whether a caller may use a secret: it inspects
// the calling script, asks the user, and remembers recent approvals.
package approval

import (
	"context"
	"strings"

	"github.com/allisson/secretbroker/internal/errors"
)

// MaxTrustLevel is the highest trust score a caller can get.
const MaxTrustLevel = 5

var (
	// ErrDenied indicates the user refused the request.
	ErrDenied = errors.Wrap(errors.ErrForbidden, "request denied")

	// ErrNotInteractive indicates no terminal is available to ask the user.
	ErrNotInteractive = errors.Wrap(errors.ErrForbidden, "no terminal available for approval")
)

// TrustInfo summarises how much the calling script can be trusted.
type TrustInfo struct {
	// Level is a score from 0 to MaxTrustLevel.
	Level int
	// ContentHash is the hex SHA-256 of the caller's content. Cached
	// approvals are keyed on it, so editing the caller invalidates them.
	ContentHash string
	// Findings explain each point lost.
	Findings []string
}

// Stars renders Level as filled and empty stars, e.g. "★★★☆☆".
func (t TrustInfo) Stars() string {
	level := min(max(t.Level, 0), MaxTrustLevel)
	return strings.Repeat("★", level) + strings.Repeat("☆", MaxTrustLevel-level)
}

// Request is what the user is asked to approve.
type Request struct {
	Caller string
	Trust  TrustInfo
	Secret string
	Reason string
}

// Prompter asks the user to approve a request.
type Prompter interface {
	Confirm(ctx context.Context, req Request) (bool, error)
}
