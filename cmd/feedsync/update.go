package main

import (
	"github.com/spf13/cobra"

	"github.com/KonishchevDmitry/feedsync/internal/config"
	"github.com/KonishchevDmitry/feedsync/internal/database"
	"github.com/KonishchevDmitry/feedsync/internal/updater"
	"github.com/KonishchevDmitry/feedsync/pkg/favicon"
)

func newUpdateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update [ID...]",
		Short: "Update the specified feeds (all feeds by default) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := flags.loadConfig()
			if err != nil {
				return err
			}

			return flags.withDatabase(ctx, func(db *database.Database) error {
				scheduler := updater.New(db, config.NewPrefs(c),
					updater.WithFaviconUpdater(favicon.NewResolver(c.Favicon.Timeout)))
				defer scheduler.Close(ctx)

				if len(args) == 0 {
					if err := scheduler.UpdateAll(ctx, updater.UpdateOptions{}); err != nil {
						return err
					}
				} else {
					scheduler.Update(ctx, args, updater.UpdateOptions{})
				}

				if err := scheduler.Wait(ctx); err != nil {
					scheduler.Stop(ctx)
					return err
				}

				return nil
			})
		},
	}
}
