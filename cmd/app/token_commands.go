package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/orgvault/cmd/app/commands"
	"github.com/allisson/orgvault/internal/app"
	"github.com/allisson/orgvault/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "revoke-token",
			Usage: "Revoke a service access token",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Token ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "revoked-by",
					Required: true,
					Usage:    "Identity recorded as the revoker",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunRevokeToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("id"),
					cmd.String("revoked-by"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete tokens that expired more than the given number of days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Value:   -1,
					Usage:   "Retention in days (defaults to TOKEN_CLEANUP_RETENTION_DAYS)",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many tokens would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				days := int(cmd.Int("days"))
				if !cmd.IsSet("days") {
					days = cfg.TokenCleanupRetentionDays
				}

				return commands.RunCleanExpiredTokens(
					ctx,
					tokenUseCase,
					container.Logger(),
					cmd.Root().Writer,
					days,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
