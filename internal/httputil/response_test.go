package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	apperrors "github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: apperrors.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "conflict", err: apperrors.ErrConflict, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{
			name:       "invalid input",
			err:        actionDomain.ErrInvalidRequest,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_input",
		},
		{
			name:       "policy violation",
			err:        tokenDomain.ErrPolicyViolation,
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "execution timeout",
			err:        actionDomain.ErrExecutionTimeout,
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:       "spawn failure",
			err:        actionDomain.ErrSpawnFailure,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "unavailable",
		},
		{
			name:       "unsupported key",
			err:        actionDomain.ErrUnsupportedKeyType,
			wantStatus: http.StatusNotImplemented,
			wantCode:   "unsupported",
		},
		{
			name:       "unknown error",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestHandleErrorGin_TokenRejectionsAreIndistinguishable(t *testing.T) {
	rejections := []error{
		tokenDomain.ErrKeyNotFound,
		tokenDomain.ErrAuthenticationFailed,
		tokenDomain.ErrMalformedToken,
		tokenDomain.ErrExpired,
		tokenDomain.ErrRevoked,
		apperrors.ErrUnauthorized,
	}

	var bodies []string
	for _, err := range rejections {
		c, w := newTestContext()
		HandleErrorGin(c, err, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, tokenDomain.PublicMessage, response.Message)
		bodies = append(bodies, w.Body.String())
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestHandleErrorGin_NilError(t *testing.T) {
	c, w := newTestContext()

	HandleErrorGin(c, nil, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w)
	assert.Equal(t, "bad_request", response.Error)
	assert.Equal(t, "unexpected EOF", response.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()

	HandleValidationErrorGin(c, errors.New("secret: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
}
