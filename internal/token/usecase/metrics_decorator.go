package usecase

import (
	"context"
	"time"

	"github.com/allisson/secretbroker/internal/metrics"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

const metricsDomain = "token"

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	metrics.Observe(ctx, t.metrics, metricsDomain, "issue", start, err)
	return output, err
}

// Open records metrics for the token pipeline, counting rejections separately.
func (t *tokenUseCaseWithMetrics) Open(
	ctx context.Context,
	token string,
	policies ...tokenDomain.Policy,
) (*tokenDomain.Claims, error) {
	start := time.Now()
	claims, err := t.next.Open(ctx, token, policies...)
	metrics.Observe(ctx, t.metrics, metricsDomain, "open", start, err)
	return claims, err
}

// Revoke records metrics for token revocation.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, token string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, token)
	metrics.Observe(ctx, t.metrics, metricsDomain, "revoke", start, err)
	return err
}

// Rotate records metrics for key rotation.
func (t *tokenUseCaseWithMetrics) Rotate(ctx context.Context) error {
	start := time.Now()
	err := t.next.Rotate(ctx)
	metrics.Observe(ctx, t.metrics, metricsDomain, "rotate", start, err)
	return err
}

// Purge records metrics for revocation purges.
func (t *tokenUseCaseWithMetrics) Purge(ctx context.Context) (int64, error) {
	start := time.Now()
	purged, err := t.next.Purge(ctx)
	metrics.Observe(ctx, t.metrics, metricsDomain, "purge", start, err)
	return purged, err
}
