// Package http provides the authentication and rate limiting middleware that
// guards the broker API.
package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/secretbroker/internal/auth/service"
	apperrors "github.com/allisson/secretbroker/internal/errors"
	"github.com/allisson/secretbroker/internal/httputil"
)

// AuthenticationMiddleware requires "Authorization: Bearer <token>" where the
// token matches tokenHash (Argon2id, PHC format).
//
// Argon2id verification is deliberately slow, so the SHA-256 digest of the
// last accepted token is remembered and later requests presenting the same
// token are compared against it in constant time.
//
// Error handling:
//   - Missing, malformed or empty Authorization header → 401 Unauthorized
//   - Token does not match → 401 Unauthorized
func AuthenticationMiddleware(
	tokenHash string,
	tokenService authService.APITokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	var (
		mu       sync.RWMutex
		accepted []byte
	)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		digest := sha256.Sum256([]byte(plainToken))

		mu.RLock()
		known := accepted != nil && subtle.ConstantTimeCompare(accepted, digest[:]) == 1
		mu.RUnlock()

		if !known {
			if !tokenService.CompareToken(plainToken, tokenHash) {
				logger.Debug("authentication failed: bearer token mismatch",
					slog.String("client_ip", c.ClientIP()))
				httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
				c.Abort()
				return
			}
			mu.Lock()
			accepted = digest[:]
			mu.Unlock()
		}

		c.Next()
	}
}
