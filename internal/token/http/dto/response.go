package dto

import (
	"time"

	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

// IssueTokenResponse is the public view of a minted token.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	KeyID     string    `json:"kid"`
	TokenID   string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapIssueTokenOutput converts a use case output to its API response.
func MapIssueTokenOutput(output *tokenDomain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		Token:     output.Token,
		KeyID:     output.KeyID,
		TokenID:   output.TokenID,
		ExpiresAt: output.ExpiresAt,
	}
}
