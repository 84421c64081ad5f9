package app

import (
	authService "github.com/allisson/secretbroker/internal/auth/service"
)

// APITokenService returns the service hashing and verifying API bearer tokens.
func (c *Container) APITokenService() authService.APITokenService {
	c.apiTokenServiceInit.Do(func() {
		c.apiTokenService = authService.NewAPITokenService()
	})
	return c.apiTokenService
}
