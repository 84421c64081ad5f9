package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secretbroker/internal/backend"
	apperrors "github.com/allisson/secretbroker/internal/errors"
	"github.com/allisson/secretbroker/internal/httputil"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
	"github.com/allisson/secretbroker/internal/token/http/dto"
	"github.com/allisson/secretbroker/internal/token/usecase/mocks"
)

func setupTestHandler(t *testing.T) (*TokenHandler, *mocks.MockTokenUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	secrets := backend.NewMemoryBackend()
	require.NoError(t, secrets.Set(context.Background(), "db-password", []byte("hunter2")))

	mockUseCase := &mocks.MockTokenUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTokenHandler(mockUseCase, secrets, logger), mockUseCase
}

func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewBufferString(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestTokenHandler_IssueTokenHandler(t *testing.T) {
	t.Run("Success_IssuesTokenForBackendSecret", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		expiresAt := time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC)

		mockUseCase.On("Issue", mock.Anything, mock.MatchedBy(func(input *tokenDomain.IssueTokenInput) bool {
			return input.Secret.Reveal() == "hunter2" &&
				input.Subject == "ci" &&
				input.TTL == 30*time.Second &&
				input.Extra["env"] == "prod"
		})).Return(&tokenDomain.IssueTokenOutput{
			Token:     "h.n.c",
			KeyID:     "kid-1",
			TokenID:   "jti-1",
			ExpiresAt: expiresAt,
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens", dto.IssueTokenRequest{
			Secret:     "db-password",
			Subject:    "ci",
			TTLSeconds: 30,
			Extra:      map[string]string{"env": "prod"},
		})
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.IssueTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "h.n.c", response.Token)
		assert.Equal(t, "kid-1", response.KeyID)
		assert.Equal(t, "jti-1", response.TokenID)
		assert.True(t, expiresAt.Equal(response.ExpiresAt))
		assert.NotContains(t, w.Body.String(), "hunter2")
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens", "{not json")
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidSecretName", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens", dto.IssueTokenRequest{Secret: "../x"})
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_UnknownSecret", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens", dto.IssueTokenRequest{Secret: "missing"})
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_UseCaseFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("Issue", mock.Anything, mock.Anything).
			Return(nil, apperrors.New("key manager closed")).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens", dto.IssueTokenRequest{Secret: "db-password"})
		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTokenHandler_RevokeTokenHandler(t *testing.T) {
	t.Run("Success_Revoked", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("Revoke", mock.Anything, "h.n.c").Return(nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/revoke", dto.RevokeTokenRequest{Token: "h.n.c"})
		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusNoContent, c.Writer.Status())
		assert.Empty(t, w.Body.String())
	})

	t.Run("Error_ForgedToken", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("Revoke", mock.Anything, "forged").
			Return(tokenDomain.ErrAuthenticationFailed).Once()

		c, w := createTestContext(http.MethodPost, "/v1/tokens/revoke", dto.RevokeTokenRequest{Token: "forged"})
		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, tokenDomain.PublicMessage, response.Message)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/tokens/revoke", dto.RevokeTokenRequest{})
		handler.RevokeTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestTokenHandler_RotateKeyHandler(t *testing.T) {
	t.Run("Success_Rotated", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("Rotate", mock.Anything).Return(nil).Once()

		c, _ := createTestContext(http.MethodPost, "/v1/keys/rotate", nil)
		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	})

	t.Run("Error_RotateFails", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		mockUseCase.On("Rotate", mock.Anything).Return(apperrors.New("entropy exhausted")).Once()

		c, w := createTestContext(http.MethodPost, "/v1/keys/rotate", nil)
		handler.RotateKeyHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
