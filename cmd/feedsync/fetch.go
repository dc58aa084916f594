package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KonishchevDmitry/feedsync/pkg/fetch"
	"github.com/KonishchevDmitry/feedsync/pkg/rss"
	"github.com/KonishchevDmitry/feedsync/pkg/url"
)

func newFetchCommand(flags *globalFlags) *cobra.Command {
	var toRSS bool

	command := &cobra.Command{
		Use:   "fetch URL",
		Short: "Fetch and parse a feed without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.loadConfig()
			if err != nil {
				return err
			}

			feedURL, err := url.ParseAbsolute(args[0])
			if err != nil {
				return err
			}

			parsed, err := fetch.Feed(cmd.Context(), feedURL, fetch.Timeout(c.Fetch.Timeout))
			if err != nil {
				return err
			}

			if toRSS {
				return rss.Write(rss.FromParsed(parsed), os.Stdout)
			}

			fmt.Printf("Title: %s\n", parsed.Title)
			if parsed.Link != nil {
				fmt.Printf("Website: %s\n", parsed.Link)
			}
			if parsed.Language != "" {
				fmt.Printf("Language: %s\n", parsed.Language)
			}
			fmt.Printf("Entries: %d\n", len(parsed.Entries))

			for _, entry := range parsed.Entries {
				date := "-"
				if !entry.Published.IsZero() {
					date = entry.Published.Format(time.DateTime)
				}
				fmt.Printf("  %s  %s\n", date, entry.Title)
			}

			return nil
		},
	}

	command.Flags().BoolVar(&toRSS, "rss", false, "render the feed as RSS 2.0")
	return command
}
