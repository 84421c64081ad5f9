package app

import (
	"fmt"

	cryptoDomain "github.com/allisson/secretbroker/internal/crypto/domain"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeeperOpener returns the gocloud.dev/secrets keeper opener.
func (c *Container) KeeperOpener() cryptoService.KeeperOpener {
	c.keeperOpenerInit.Do(func() {
		c.keeperOpener = cryptoService.NewKeeperOpener()
	})
	return c.keeperOpener
}

// KeyManager returns the token key manager.
func (c *Container) KeyManager() (*cryptoService.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager()
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// initKeyManager creates the key manager from the token algorithm and grace period.
func (c *Container) initKeyManager() (*cryptoService.KeyManager, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.TokenAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid token algorithm: %w", err)
	}

	keyManager, err := cryptoService.NewKeyManager(
		cryptoDomain.KeyRotationConfig{
			GracePeriod: c.config.KeyGracePeriod,
			Algorithm:   alg,
		},
		cryptoService.WithLogger(c.Logger()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key manager: %w", err)
	}
	return keyManager, nil
}
