package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/orgvault/cmd/app/commands"
	"github.com/allisson/orgvault/internal/app"
	"github.com/allisson/orgvault/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key, optionally wrapped by a KMS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (e.g., base64key://..., gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunCreateMasterKey(
					ctx,
					container.KMSService(),
					container.Logger(),
					cmd.Root().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
