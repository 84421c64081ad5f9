package usecase

import (
	"context"
	"time"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	"github.com/allisson/secretbroker/internal/metrics"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// actionUseCaseWithMetrics decorates ActionUseCase with metrics instrumentation.
type actionUseCaseWithMetrics struct {
	next    ActionUseCase
	metrics metrics.BusinessMetrics
}

// NewActionUseCaseWithMetrics wraps an ActionUseCase with metrics recording.
func NewActionUseCaseWithMetrics(useCase ActionUseCase, m metrics.BusinessMetrics) ActionUseCase {
	return &actionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ExecWithToken records metrics for delegated exec. A command that exits
// non-zero still counts as success.
func (a *actionUseCaseWithMetrics) ExecWithToken(
	ctx context.Context,
	token string,
	req *actionDomain.ExecRequest,
	policies ...tokenDomain.Policy,
) (*actionDomain.ExecResult, error) {
	start := time.Now()
	result, err := a.next.ExecWithToken(ctx, token, req, policies...)
	metrics.Observe(ctx, a.metrics, "action", "exec", start, err)
	return result, err
}

// SignWithToken records metrics for delegated signing.
func (a *actionUseCaseWithMetrics) SignWithToken(
	ctx context.Context,
	token string,
	req *actionDomain.SignRequest,
	policies ...tokenDomain.Policy,
) (*actionDomain.SignResult, error) {
	start := time.Now()
	result, err := a.next.SignWithToken(ctx, token, req, policies...)
	metrics.Observe(ctx, a.metrics, "action", "sign", start, err)
	return result, err
}
