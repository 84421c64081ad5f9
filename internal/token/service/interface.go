package service

import (
	"context"
	"time"

	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// RevocationRegistry is the block-list of revoked token ids.
//
// Block is idempotent. Clear empties the registry and exists for test
// isolation; production code paths never call it. Purge drops entries whose
// token has expired at now and returns how many were removed.
type RevocationRegistry interface {
	Block(ctx context.Context, entry tokenDomain.RevocationEntry) error
	IsBlocked(ctx context.Context, tokenID string) (bool, error)
	Clear(ctx context.Context) error
	Purge(ctx context.Context, now time.Time) (int64, error)
}
