// Package http provides HTTP handlers for delegated actions. Only signing is
// exposed over HTTP; delegated exec runs from the command line.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretbroker/internal/action/http/dto"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	"github.com/allisson/secretbroker/internal/httputil"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
	customValidation "github.com/allisson/secretbroker/internal/validation"
)

// SignHandler handles HTTP requests for delegated signing.
type SignHandler struct {
	actionUseCase actionUseCase.ActionUseCase
	logger        *slog.Logger
}

// NewSignHandler creates a new sign handler with required dependencies.
func NewSignHandler(actionUseCase actionUseCase.ActionUseCase, logger *slog.Logger) *SignHandler {
	return &SignHandler{
		actionUseCase: actionUseCase,
		logger:        logger,
	}
}

// SignHandler signs data with the private key carried by a token.
// POST /v1/sign - Returns 200 OK with the base64 signature and the algorithm used.
// When subject is given the token's sub claim must match it.
func (h *SignHandler) SignHandler(c *gin.Context) {
	var req dto.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	signRequest, err := req.ToDomain()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var policies []tokenDomain.Policy
	if req.Subject != "" {
		policies = append(policies, tokenDomain.RequireSubject(req.Subject))
	}

	result, err := h.actionUseCase.SignWithToken(c.Request.Context(), req.Token, signRequest, policies...)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}
