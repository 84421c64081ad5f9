package approval

import (
	"context"
	"log/slog"
	"time"
)

// Gate combines the inspector, the cache and a prompter into one decision.
type Gate struct {
	inspector *Inspector
	cache     *Cache
	prompter  Prompter
	logger    *slog.Logger
	now       func() time.Time
}

// NewGate creates a Gate. cache may be nil to disable caching.
func NewGate(inspector *Inspector, cache *Cache, prompter Prompter, logger *slog.Logger) *Gate {
	return &Gate{
		inspector: inspector,
		cache:     cache,
		prompter:  prompter,
		logger:    logger,
		now:       time.Now,
	}
}

// Authorize inspects caller and returns nil when the user approves access to
// secret, or ErrDenied. With useCache, a still-valid approval for the same
// secret and caller content skips the prompt, and a fresh approval is
// remembered.
func (g *Gate) Authorize(ctx context.Context, secret, caller, reason string, useCache bool) error {
	trust, err := g.inspector.Inspect(caller)
	if err != nil {
		return err
	}

	useCache = useCache && g.cache != nil
	if useCache {
		cached, err := g.cache.Lookup(secret, trust.ContentHash, g.now())
		if err != nil {
			return err
		}
		if cached {
			g.logger.Debug("approval served from cache", slog.String("secret", secret), slog.String("caller", caller))
			return nil
		}
	}

	approved, err := g.prompter.Confirm(ctx, Request{Caller: caller, Trust: trust, Secret: secret, Reason: reason})
	if err != nil {
		return err
	}
	if !approved {
		g.logger.Info("secret access denied", slog.String("secret", secret), slog.String("caller", caller))
		return ErrDenied
	}

	g.logger.Info("secret access approved",
		slog.String("secret", secret),
		slog.String("caller", caller),
		slog.Int("trust_level", trust.Level),
	)
	if useCache {
		return g.cache.Remember(secret, trust.ContentHash, g.now())
	}
	return nil
}
