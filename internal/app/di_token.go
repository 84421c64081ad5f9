package app

import (
	"fmt"

	"github.com/allisson/secretbroker/internal/database"
	tokenHTTP "github.com/allisson/secretbroker/internal/token/http"
	tokenRepository "github.com/allisson/secretbroker/internal/token/repository"
	tokenService "github.com/allisson/secretbroker/internal/token/service"
	tokenUseCase "github.com/allisson/secretbroker/internal/token/usecase"
)

// Codec returns the AEAD token codec.
func (c *Container) Codec() *tokenService.Codec {
	c.codecInit.Do(func() {
		c.codec = tokenService.NewCodec(c.AEADManager())
	})
	return c.codec
}

// ClaimsValidator returns the claims validator. It carries no default policies;
// callers pass theirs per request.
func (c *Container) ClaimsValidator() *tokenService.ClaimsValidator {
	c.claimsValidatorInit.Do(func() {
		c.claimsValidator = tokenService.NewClaimsValidator()
	})
	return c.claimsValidator
}

// RevocationRegistry returns the revocation registry. It is process local unless
// REVOCATION_DB_DRIVER selects a shared database.
func (c *Container) RevocationRegistry() (tokenService.RevocationRegistry, error) {
	var err error
	c.revocationRegistryInit.Do(func() {
		c.revocationRegistry, err = c.initRevocationRegistry()
		if err != nil {
			c.initErrors["revocationRegistry"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["revocationRegistry"]; exists {
		return nil, storedErr
	}
	return c.revocationRegistry, nil
}

// TokenUseCase returns the token use case wrapped with business metrics.
func (c *Container) TokenUseCase() (tokenUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TokenHandler returns the HTTP handler for token operations.
func (c *Container) TokenHandler() (*tokenHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

func (c *Container) initRevocationRegistry() (tokenService.RevocationRegistry, error) {
	switch c.config.RevocationDBDriver {
	case "":
		return tokenService.NewMemoryRevocationRegistry(), nil
	case database.DriverPostgres, database.DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported revocation database driver: %s", c.config.RevocationDBDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for revocation registry: %w", err)
	}
	if c.config.RevocationDBDriver == database.DriverMySQL {
		return tokenRepository.NewMySQLRevocationRegistry(db), nil
	}
	return tokenRepository.NewPostgreSQLRevocationRegistry(db), nil
}

func (c *Container) initTokenUseCase() (tokenUseCase.TokenUseCase, error) {
	keyManager, err := c.KeyManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get key manager for token use case: %w", err)
	}
	registry, err := c.RevocationRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get revocation registry for token use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}

	useCase := tokenUseCase.NewTokenUseCase(
		c.Codec(),
		keyManager,
		registry,
		c.ClaimsValidator(),
		c.config.TokenTTL,
		c.Logger(),
	)
	return tokenUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initTokenHandler() (*tokenHTTP.TokenHandler, error) {
	useCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}
	secrets, err := c.Backend()
	if err != nil {
		return nil, fmt.Errorf("failed to get backend for token handler: %w", err)
	}
	return tokenHTTP.NewTokenHandler(useCase, secrets, c.Logger()), nil
}
