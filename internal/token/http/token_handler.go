// Package http provides HTTP handlers for minting, revoking and rotating broker tokens.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	"github.com/allisson/secretbroker/internal/httputil"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
	"github.com/allisson/secretbroker/internal/token/http/dto"
	tokenUseCase "github.com/allisson/secretbroker/internal/token/usecase"
	customValidation "github.com/allisson/secretbroker/internal/validation"
)

// SecretReader loads a named secret. It is satisfied by every backend.
type SecretReader interface {
	Get(ctx context.Context, name string) (*cryptoDomain.Secret, error)
}

// TokenHandler handles HTTP requests for token operations.
type TokenHandler struct {
	tokenUseCase tokenUseCase.TokenUseCase
	secrets      SecretReader
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase tokenUseCase.TokenUseCase,
	secrets SecretReader,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		secrets:      secrets,
		logger:       logger,
	}
}

// IssueTokenHandler mints a token carrying a backend secret.
// POST /v1/tokens - Returns 201 Created with the token and its metadata.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, err := h.secrets.Get(c.Request.Context(), req.Secret)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer secret.Destroy()

	output, err := h.tokenUseCase.Issue(c.Request.Context(), &tokenDomain.IssueTokenInput{
		Secret:  secret,
		Subject: req.Subject,
		TTL:     time.Duration(req.TTLSeconds) * time.Second,
		Extra:   req.Extra,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueTokenOutput(output))
}

// RevokeTokenHandler blocks a token until it expires.
// POST /v1/tokens/revoke - Returns 204 No Content, also for tokens that are already dead.
func (h *TokenHandler) RevokeTokenHandler(c *gin.Context) {
	var req dto.RevokeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.tokenUseCase.Revoke(c.Request.Context(), req.Token); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RotateKeyHandler rotates the token key. Tokens under the previous key keep
// opening until its grace period ends.
// POST /v1/keys/rotate - Returns 204 No Content.
func (h *TokenHandler) RotateKeyHandler(c *gin.Context) {
	if err := h.tokenUseCase.Rotate(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
