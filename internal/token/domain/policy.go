package domain

import (
	"fmt"
	"slices"
)

// Policy is a caller-supplied constraint on decoded claims. A non-nil error
// rejects the token with ErrPolicyViolation.
type Policy func(claims *Claims) error

// RequireSubject requires the sub claim to equal subject, typically the name
// of the secret the caller asked for.
func RequireSubject(subject string) Policy {
	return func(claims *Claims) error {
		if claims.Subject != subject {
			return fmt.Errorf("subject mismatch")
		}
		return nil
	}
}

// RequireIssuer requires the iss claim to be one of issuers.
func RequireIssuer(issuers ...string) Policy {
	return func(claims *Claims) error {
		if !slices.Contains(issuers, claims.Issuer) {
			return fmt.Errorf("issuer not accepted")
		}
		return nil
	}
}

// RequireExtra requires the extra claim key to equal value.
func RequireExtra(key, value string) Policy {
	return func(claims *Claims) error {
		if got, ok := claims.Extra[key]; !ok || got != value {
			return fmt.Errorf("claim %q mismatch", key)
		}
		return nil
	}
}
