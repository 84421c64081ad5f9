package service

import (
	"time"

	"github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// ClaimsValidator checks expiry and caller policies on decoded claims.
//
// Default policies run for every token; per-call policies run after them.
type ClaimsValidator struct {
	defaults []tokenDomain.Policy
}

// NewClaimsValidator creates a validator that always applies defaults.
func NewClaimsValidator(defaults ...tokenDomain.Policy) *ClaimsValidator {
	return &ClaimsValidator{defaults: defaults}
}

// Validate returns ErrExpired when now >= exp and ErrPolicyViolation when any
// policy rejects the claims. Expiry is checked first.
func (v *ClaimsValidator) Validate(
	claims *tokenDomain.Claims,
	now time.Time,
	policies ...tokenDomain.Policy,
) error {
	if claims.IsExpired(now) {
		return tokenDomain.ErrExpired
	}

	for _, policy := range v.defaults {
		if err := policy(claims); err != nil {
			return errors.Wrap(tokenDomain.ErrPolicyViolation, err.Error())
		}
	}
	for _, policy := range policies {
		if err := policy(claims); err != nil {
			return errors.Wrap(tokenDomain.ErrPolicyViolation, err.Error())
		}
	}
	return nil
}
