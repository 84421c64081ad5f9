package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretbroker/cmd/app/commands"
)

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "secret",
			Usage: "Manage secrets in the configured backend",
			Commands: []*cli.Command{
				{
					Name:      "set",
					Usage:     "Store a secret read from the terminal or stdin",
					ArgsUsage: "NAME",
					Action: func(ctx context.Context, cmd *cli.Command) error {
						container, err := newContainer()
						if err != nil {
							return err
						}
						defer func() { _ = container.Shutdown(ctx) }()

						store, err := container.Backend()
						if err != nil {
							return err
						}
						return commands.RunSecretSet(
							ctx,
							store,
							container.Logger(),
							commands.DefaultIO(),
							cmd.Args().First(),
						)
					},
				},
				{
					Name:      "delete",
					Usage:     "Delete a secret",
					ArgsUsage: "NAME",
					Action: func(ctx context.Context, cmd *cli.Command) error {
						container, err := newContainer()
						if err != nil {
							return err
						}
						defer func() { _ = container.Shutdown(ctx) }()

						store, err := container.Backend()
						if err != nil {
							return err
						}
						return commands.RunSecretDelete(ctx, store, container.Logger(), cmd.Args().First())
					},
				},
				{
					Name:  "list",
					Usage: "List secret names",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:    "format",
							Aliases: []string{"f"},
							Value:   "text",
							Usage:   "Output format: 'text' or 'json'",
						},
					},
					Action: func(ctx context.Context, cmd *cli.Command) error {
						container, err := newContainer()
						if err != nil {
							return err
						}
						defer func() { _ = container.Shutdown(ctx) }()

						store, err := container.Backend()
						if err != nil {
							return err
						}
						return commands.RunSecretList(ctx, store, commands.DefaultIO().Writer, cmd.String("format"))
					},
				},
			},
		},
	}
}
