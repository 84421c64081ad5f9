package main

import (
	"context"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretbroker/cmd/app/commands"
	"github.com/allisson/secretbroker/internal/backend"
	cryptoService "github.com/allisson/secretbroker/internal/crypto/service"
	"github.com/allisson/secretbroker/internal/platform"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP API, the metrics server and the key rotation loop",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create the shared revocation registry schema",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				cfg := container.Config()
				return commands.RunMigrations(
					container.Logger(),
					cfg.RevocationDBDriver,
					cfg.RevocationDBConnectionString,
				)
			},
		},
		{
			Name:  "setup",
			Usage: "Interactively configure the secret backend",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				p, err := platform.Detect()
				if err != nil {
					return err
				}
				envPath, err := p.EnvFile()
				if err != nil {
					return err
				}
				secretsDir, err := p.SecretsDir()
				if err != nil {
					return err
				}

				wizard := backend.NewWizard(cryptoService.GenerateLocalKeeperURI, secretsDir)
				return commands.RunSetup(wizard, envPath, container.Logger(), commands.DefaultIO())
			},
		},
		{
			Name:  "platform",
			Usage: "Show the detected platform and where files are kept",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunPlatform(runtime.GOOS, commands.DefaultIO().Writer, cmd.String("format"))
			},
		},
	}
}
