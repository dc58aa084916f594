package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/KonishchevDmitry/feedsync/internal/database"
	"github.com/KonishchevDmitry/feedsync/pkg/url"
)

func newAddCommand(flags *globalFlags) *cobra.Command {
	var interval time.Duration

	command := &cobra.Command{
		Use:   "add URL",
		Short: "Subscribe to a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedURL, err := url.ParseAbsolute(args[0])
			if err != nil {
				return err
			}

			return flags.withDatabase(cmd.Context(), func(db *database.Database) error {
				f, err := db.AddFeed(cmd.Context(), feedURL, interval)
				if err != nil {
					return err
				}
				fmt.Printf("%s feed has been added as #%s.\n", f.URL, f.ID)
				return nil
			})
		},
	}

	command.Flags().DurationVarP(&interval, "interval", "i", 0, "custom update interval (the global one by default)")
	return command
}

func newRemoveCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Unsubscribe from a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withDatabase(cmd.Context(), func(db *database.Database) error {
				return db.DeleteFeed(cmd.Context(), args[0])
			})
		},
	}
}

func newListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscribed feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withDatabase(cmd.Context(), func(db *database.Database) error {
				feeds, err := db.Feeds(cmd.Context())
				if err != nil {
					return err
				}

				writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(writer, "ID\tTITLE\tURL\tUPDATED\tFAVICON")

				for _, f := range feeds {
					updated := "never"
					if !f.LastUpdated.IsZero() {
						updated = humanize.Time(f.LastUpdated)
					}

					icon := "unknown"
					if f.Favicon.Found() {
						icon = humanize.Bytes(uint64(len(f.Favicon)))
					} else if f.Favicon.Checked() {
						icon = "none"
					}

					fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Title, f.URL, updated, icon)
				}

				return writer.Flush()
			})
		},
	}
}

func newEntriesCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "entries ID",
		Short: "List stored entries of a feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withDatabase(cmd.Context(), func(db *database.Database) error {
				entries, err := db.Entries(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				for _, entry := range entries {
					date := "-"
					if !entry.Published.IsZero() {
						date = entry.Published.Format(time.DateTime)
					}

					link := ""
					if entry.Link != nil {
						link = entry.Link.String()
					}

					fmt.Printf("%s  %s  %s\n", date, entry.Title, link)
				}

				return nil
			})
		},
	}
}
