package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/KonishchevDmitry/feedsync/internal/config"
	"github.com/KonishchevDmitry/feedsync/internal/database"
	"github.com/KonishchevDmitry/feedsync/internal/updater"
	"github.com/KonishchevDmitry/feedsync/pkg/favicon"
	"github.com/KonishchevDmitry/feedsync/pkg/server"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		listen        string
		metricsListen string
		noAutoUpdate  bool
	)

	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the update scheduler and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := flags.loadConfig()
			if err != nil {
				return err
			}

			prefs := config.NewPrefs(c)
			if noAutoUpdate {
				prefs.SetAutoUpdate(false)
			}

			return flags.withDatabase(ctx, func(db *database.Database) error {
				return serve(ctx, db, c, prefs, listen, metricsListen)
			})
		},
	}

	command.Flags().StringVarP(&listen, "listen", "l", "localhost:8080", "API address to listen on")
	command.Flags().StringVar(&metricsListen, "metrics-listen", "localhost:9101", "metrics address to listen on")
	command.Flags().BoolVar(&noAutoUpdate, "no-auto-update", false, "update only feeds with custom update interval")

	return command
}

func serve(
	ctx context.Context, db *database.Database, c *config.Config, prefs *config.Prefs,
	listen string, metricsListen string,
) error {
	hub := server.NewHub()

	scheduler := updater.New(db, prefs,
		updater.WithComm(hub),
		updater.WithNotifier(hub),
		updater.WithFaviconUpdater(favicon.NewResolver(c.Favicon.Timeout)))

	scheduler.Start(ctx)
	defer scheduler.Close(ctx)

	return server.New(hub, scheduler).Serve(ctx, listen, metricsListen, scheduler)
}
