package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/orgvault/cmd/app/commands"
	"github.com/allisson/orgvault/internal/app"
	"github.com/allisson/orgvault/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server and the rotation scheduler",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "process-rotations",
			Usage: "Run one scheduled rotation pass and exit",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				secretUseCase, err := container.SecretUseCase()
				if err != nil {
					return err
				}

				return commands.RunProcessRotations(
					ctx,
					secretUseCase,
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
