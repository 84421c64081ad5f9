package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretbroker/internal/app"
	"github.com/allisson/secretbroker/internal/config"
	apperrors "github.com/allisson/secretbroker/internal/errors"
	tokenDomain "github.com/allisson/secretbroker/internal/token/domain"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getActionCommands()...)
	cmds = append(cmds, getSecretCommands()...)
	cmds = append(cmds, getKeyCommands()...)
	return cmds
}

// newContainer loads and validates the configuration and builds the container.
func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}

// userFacingError hides which token check failed.
func userFacingError(err error) error {
	if errors.Is(err, apperrors.ErrUnauthorized) {
		return errors.New(tokenDomain.PublicMessage)
	}
	return err
}
