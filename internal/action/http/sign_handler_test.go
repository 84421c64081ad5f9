package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
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

	actionDomain "github.com/allisson/secretbroker/internal/action/domain"
	"github.com/allisson/secretbroker/internal/action/http/dto"
	actionService "github.com/allisson/secretbroker/internal/action/service"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	"github.com/allisson/secretbroker/internal/action/usecase/mocks"
	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
	"github.com/allisson/secretbroker/internal/httputil"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
	tokenService "github.com/allisson/secretbroker/internal/token/service"
	tokenUseCase "github.com/allisson/secretbroker/internal/token/usecase"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func createTestContext(body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case string:
		bodyReader = bytes.NewBufferString(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/sign", bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestSignHandler_WithMockUseCase(t *testing.T) {
	t.Run("Success_ReturnsSignature", func(t *testing.T) {
		mockUseCase := &mocks.MockActionUseCase{}
		mockUseCase.On("SignWithToken", mock.Anything, "a.b.c", &actionDomain.SignRequest{
			Data:      []byte("hello"),
			Algorithm: "sha384",
		}).Return(&actionDomain.SignResult{Signature: "c2ln", Algorithm: "sha384"}, nil).Once()
		handler := NewSignHandler(mockUseCase, discardLogger)

		c, w := createTestContext(dto.SignRequest{Token: "a.b.c", Data: "aGVsbG8=", Algorithm: "sha384"})
		handler.SignHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"signature":"c2ln","algorithm":"sha384"}`, w.Body.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler := NewSignHandler(&mocks.MockActionUseCase{}, discardLogger)

		c, w := createTestContext("[")
		handler.SignHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidData", func(t *testing.T) {
		handler := NewSignHandler(&mocks.MockActionUseCase{}, discardLogger)

		c, w := createTestContext(dto.SignRequest{Token: "a.b.c", Data: "not base64!"})
		handler.SignHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_RejectedToken", func(t *testing.T) {
		mockUseCase := &mocks.MockActionUseCase{}
		mockUseCase.On("SignWithToken", mock.Anything, "a.b.c", mock.Anything).
			Return(nil, tokenDomain.ErrRevoked).Once()
		handler := NewSignHandler(mockUseCase, discardLogger)

		c, w := createTestContext(dto.SignRequest{Token: "a.b.c", Data: "aGVsbG8="})
		handler.SignHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, tokenDomain.PublicMessage, response.Message)
	})
}

// newSigningPipeline wires the real token and action use cases.
func newSigningPipeline(t *testing.T) (tokenUseCase.TokenUseCase, *SignHandler) {
	t.Helper()

	km, err := cryptoService.NewKeyManager(cryptoDomain.KeyRotationConfig{GracePeriod: time.Minute})
	require.NoError(t, err)
	t.Cleanup(km.Close)

	tokens := tokenUseCase.NewTokenUseCase(
		tokenService.NewCodec(cryptoService.NewAEADManager()),
		km,
		tokenService.NewMemoryRevocationRegistry(),
		tokenService.NewClaimsValidator(),
		time.Minute,
		discardLogger,
	)
	actions := actionUseCase.NewActionUseCase(
		tokens,
		actionService.NewExecutor(),
		actionService.NewSigner(),
		discardLogger,
	)
	return tokens, NewSignHandler(actions, discardLogger)
}

func TestSignHandler_EndToEnd(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	tokens, handler := newSigningPipeline(t)

	issue := func(subject string) string {
		output, err := tokens.Issue(context.Background(), &tokenDomain.IssueTokenInput{
			Secret:  cryptoDomain.NewSecret(bytes.Clone(pemKey)),
			Subject: subject,
		})
		require.NoError(t, err)
		return output.Token
	}

	t.Run("Success_Ed25519", func(t *testing.T) {
		c, w := createTestContext(dto.SignRequest{
			Token:     issue("ci"),
			Data:      base64.StdEncoding.EncodeToString([]byte("payload")),
			Algorithm: "sha384",
			Subject:   "ci",
		})
		handler.SignHandler(c)

		require.Equal(t, http.StatusOK, w.Code)
		var result actionDomain.SignResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, "ed25519", result.Algorithm)

		signature, err := base64.StdEncoding.DecodeString(result.Signature)
		require.NoError(t, err)
		assert.True(t, ed25519.Verify(publicKey, []byte("payload"), signature))
	})

	t.Run("Error_SubjectMismatch", func(t *testing.T) {
		c, w := createTestContext(dto.SignRequest{
			Token:   issue("ci"),
			Data:    base64.StdEncoding.EncodeToString([]byte("payload")),
			Subject: "prod",
		})
		handler.SignHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_RevokedToken", func(t *testing.T) {
		token := issue("")
		require.NoError(t, tokens.Revoke(context.Background(), token))

		c, w := createTestContext(dto.SignRequest{
			Token: token,
			Data:  base64.StdEncoding.EncodeToString([]byte("payload")),
		})
		handler.SignHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
