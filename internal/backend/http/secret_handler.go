// Package http provides HTTP handlers exposing backend metadata. Secret
// values never leave the broker through these handlers.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/secretbroker/internal/httputil"
)

// SecretLister lists stored secret names. It is satisfied by every backend.
type SecretLister interface {
	List(ctx context.Context) ([]string, error)
}

// ListSecretsResponse is a page of secret names.
type ListSecretsResponse struct {
	Data   []string `json:"data"`
	Offset int      `json:"offset"`
	Limit  int      `json:"limit"`
	Total  int      `json:"total"`
}

// SecretHandler handles HTTP requests for secret metadata.
type SecretHandler struct {
	secrets SecretLister
	logger  *slog.Logger
}

// NewSecretHandler creates a new secret handler.
func NewSecretHandler(secrets SecretLister, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secrets: secrets,
		logger:  logger,
	}
}

// ListHandler lists secret names in lexical order.
// GET /v1/secrets?offset=0&limit=50 - Returns 200 OK with a page of names.
func (h *SecretHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	names, err := h.secrets.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, ListSecretsResponse{
		Data:   httputil.Page(names, offset, limit),
		Offset: offset,
		Limit:  limit,
		Total:  len(names),
	})
}
