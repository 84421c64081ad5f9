package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretbroker/cmd/app/commands"
	authService "github.com/allisson/secretbroker/internal/auth/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-keeper-key",
			Usage: "Generate a local keeper key for the sealed-file backend",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateKeeperKey(commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "create-api-token",
			Usage: "Generate an API bearer token and the hash for API_TOKEN_HASH",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateAPIToken(authService.NewAPITokenService(), commands.DefaultIO().Writer)
			},
		},
	}
}
