package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretbroker/cmd/app/commands"
	actionUseCase "github.com/allisson/secretbroker/internal/action/usecase"
	"github.com/allisson/secretbroker/internal/app"
	tokenUseCase "github.com/allisson/secretbroker/internal/token/usecase"
)

func getActionCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "exec",
			Usage:     "Run a command with a secret injected into its environment",
			ArgsUsage: "-- command [args...]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Name of the secret to inject",
				},
				&cli.StringFlag{
					Name:     "env",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Environment variable that receives the secret",
				},
				&cli.StringFlag{
					Name:     "caller",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Path of the script asking for the secret",
				},
				&cli.StringFlag{
					Name:    "reason",
					Aliases: []string{"r"},
					Usage:   "Why the secret is needed, shown in the approval prompt",
				},
				&cli.BoolFlag{
					Name:  "cache",
					Usage: "Reuse a recent approval for the same secret and caller content",
				},
				&cli.BoolFlag{
					Name:  "no-redact",
					Usage: "Relay the command output without redacting the secret",
				},
				&cli.DurationFlag{
					Name:  "timeout",
					Usage: "Kill the command after this long (defaults to EXEC_TIMEOUT_SECONDS)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				deps, err := actionDependencies(container)
				if err != nil {
					return err
				}

				code, err := commands.RunExec(
					ctx,
					deps.secrets,
					deps.gate,
					deps.tokens,
					deps.actions,
					container.Logger(),
					commands.DefaultIO(),
					commands.ExecOptions{
						Secret:      cmd.String("secret"),
						EnvVar:      cmd.String("env"),
						Caller:      cmd.String("caller"),
						Reason:      cmd.String("reason"),
						Placeholder: container.Config().SecretPlaceholder,
						UseCache:    cmd.Bool("cache"),
						NoRedact:    cmd.Bool("no-redact"),
						Timeout:     cmd.Duration("timeout"),
						Command:     cmd.Args().Slice(),
					},
				)
				if err != nil {
					return err
				}
				if code != 0 {
					return cli.Exit("", code)
				}
				return nil
			},
		},
		{
			Name:  "sign",
			Usage: "Sign data with a private key stored as a secret",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Name of the secret holding the PEM private key",
				},
				&cli.StringFlag{
					Name:     "caller",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Path of the script asking for the signature",
				},
				&cli.StringFlag{
					Name:     "data-file",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "File to sign, or '-' for stdin",
				},
				&cli.StringFlag{
					Name:    "algorithm",
					Aliases: []string{"alg"},
					Usage:   "Digest for RSA and ECDSA keys (sha224, sha256, sha384, sha512)",
				},
				&cli.StringFlag{
					Name:    "reason",
					Aliases: []string{"r"},
					Usage:   "Why the signature is needed, shown in the approval prompt",
				},
				&cli.BoolFlag{
					Name:  "cache",
					Usage: "Reuse a recent approval for the same secret and caller content",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				deps, err := actionDependencies(container)
				if err != nil {
					return err
				}

				return commands.RunSign(
					ctx,
					deps.secrets,
					deps.gate,
					deps.tokens,
					deps.actions,
					container.Logger(),
					commands.DefaultIO(),
					commands.SignOptions{
						Secret:    cmd.String("secret"),
						Caller:    cmd.String("caller"),
						Reason:    cmd.String("reason"),
						DataFile:  cmd.String("data-file"),
						Algorithm: cmd.String("algorithm"),
						UseCache:  cmd.Bool("cache"),
					},
				)
			},
		},
	}
}

type actionDeps struct {
	secrets commands.SecretGetter
	gate    commands.Authorizer
	tokens  tokenUseCase.TokenUseCase
	actions actionUseCase.ActionUseCase
}

func actionDependencies(container *app.Container) (*actionDeps, error) {
	secrets, err := container.Backend()
	if err != nil {
		return nil, err
	}
	gate, err := container.ApprovalGate()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize approval gate: %w", err)
	}
	tokens, err := container.TokenUseCase()
	if err != nil {
		return nil, err
	}
	actions, err := container.ActionUseCase()
	if err != nil {
		return nil, err
	}
	return &actionDeps{secrets: secrets, gate: gate, tokens: tokens, actions: actions}, nil
}
