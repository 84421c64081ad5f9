package app

import (
	"fmt"
	"os"

	"github.com/allisson/secretbroker/internal/approval"
	"github.com/allisson/secretbroker/internal/backend"
	backendHTTP "github.com/allisson/secretbroker/internal/backend/http"
	"github.com/allisson/secretbroker/internal/platform"
)

// Backend returns the secret store selected by BACKEND_PROVIDER.
func (c *Container) Backend() (backend.Backend, error) {
	var err error
	c.backendInit.Do(func() {
		c.backend, err = backend.Open(c.ctx, backend.Options{
			Provider:  c.config.BackendProvider,
			KeeperURI: c.config.BackendKeeperURI,
			Directory: c.config.BackendDirectory,
		}, c.KeeperOpener())
		if err != nil {
			err = fmt.Errorf("failed to open backend: %w", err)
			c.initErrors["backend"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["backend"]; exists {
		return nil, storedErr
	}
	return c.backend, nil
}

// ApprovalGate returns the gate that asks the operator before a secret is used.
// Prompts are read from stdin and written to stderr.
func (c *Container) ApprovalGate() (*approval.Gate, error) {
	var err error
	c.approvalGateInit.Do(func() {
		c.approvalGate, err = c.initApprovalGate()
		if err != nil {
			c.initErrors["approvalGate"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["approvalGate"]; exists {
		return nil, storedErr
	}
	return c.approvalGate, nil
}

// SecretHandler returns the HTTP handler listing secret names.
func (c *Container) SecretHandler() (*backendHTTP.SecretHandler, error) {
	var err error
	c.secretHandlerInit.Do(func() {
		var secrets backend.Backend
		secrets, err = c.Backend()
		if err != nil {
			err = fmt.Errorf("failed to get backend for secret handler: %w", err)
			c.initErrors["secretHandler"] = err
			return
		}
		c.secretHandler = backendHTTP.NewSecretHandler(secrets, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

func (c *Container) initApprovalGate() (*approval.Gate, error) {
	p, err := platform.Detect()
	if err != nil {
		return nil, err
	}
	cachePath, err := p.ApprovalCacheFile()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approval cache path: %w", err)
	}

	return approval.NewGate(
		approval.NewInspector(),
		approval.NewCache(cachePath, c.config.ApprovalCacheTTL),
		approval.NewTerminalPrompter(os.Stdin, os.Stderr),
		c.Logger(),
	), nil
}
