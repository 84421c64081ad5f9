// Package dto provides data transfer objects for the token endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/secretbroker/internal/validation"
)

// MaxTTLSeconds caps the lifetime a caller may request for a token.
const MaxTTLSeconds = 24 * 60 * 60

// IssueTokenRequest asks for a token carrying the named backend secret.
type IssueTokenRequest struct {
	Secret     string            `json:"secret"`
	Subject    string            `json:"subject"`
	TTLSeconds int               `json:"ttl_seconds"`
	Extra      map[string]string `json:"extra"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secret,
			validation.Required,
			customValidation.SecretName,
		),
		validation.Field(&r.Subject,
			customValidation.NoWhitespace,
			validation.Length(0, 255),
		),
		validation.Field(&r.TTLSeconds,
			validation.Min(0),
			validation.Max(MaxTTLSeconds),
		),
		validation.Field(&r.Extra,
			validation.Length(0, 32),
		),
	)
}

// RevokeTokenRequest names the token to revoke.
type RevokeTokenRequest struct {
	Token string `json:"token"`
}

// Validate checks if the revoke token request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
