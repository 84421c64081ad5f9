package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secretbroker/internal/backend"
	apperrors "github.com/allisson/secretbroker/internal/errors"
)

type failingLister struct{}

func (failingLister) List(context.Context) ([]string, error) {
	return nil, apperrors.Wrap(apperrors.ErrUnavailable, "disk gone")
}

func serveList(t *testing.T, lister SecretLister, url string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewSecretHandler(lister, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router := gin.New()
	router.GET("/v1/secrets", handler.ListHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestSecretHandler_ListHandler(t *testing.T) {
	store := backend.NewMemoryBackend()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, store.Set(context.Background(), name, []byte("value-"+name)))
	}

	t.Run("Success_DefaultPage", func(t *testing.T) {
		w := serveList(t, store, "/v1/secrets")

		require.Equal(t, http.StatusOK, w.Code)
		var response ListSecretsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, []string{"a", "b", "c"}, response.Data)
		assert.Equal(t, 3, response.Total)
		assert.Equal(t, 50, response.Limit)
		assert.NotContains(t, w.Body.String(), "value-")
	})

	t.Run("Success_Window", func(t *testing.T) {
		w := serveList(t, store, "/v1/secrets?offset=1&limit=1")

		require.Equal(t, http.StatusOK, w.Code)
		var response ListSecretsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, []string{"b"}, response.Data)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		w := serveList(t, store, "/v1/secrets?limit=0")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_BackendUnavailable", func(t *testing.T) {
		w := serveList(t, failingLister{}, "/v1/secrets")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
