package domain

import (
	"time"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
)

// IssueTokenInput describes a token to mint.
//
// Secret is borrowed: issuing copies it into the sealed payload and never
// destroys the caller's value. A zero TTL uses the issuer's default.
type IssueTokenInput struct {
	Secret  *cryptoDomain.Secret
	Subject string
	TTL     time.Duration
	Extra   map[string]string
}

// IssueTokenOutput is a freshly minted token and its public metadata.
type IssueTokenOutput struct {
	Token     string    `json:"token"`
	KeyID     string    `json:"kid"`
	TokenID   string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}
