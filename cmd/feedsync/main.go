package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KonishchevDmitry/feedsync/internal/config"
	"github.com/KonishchevDmitry/feedsync/internal/database"
)

type globalFlags struct {
	debug      bool
	configPath string
	dbPath     string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s.\n", err)
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	command := &cobra.Command{
		Use:   "feedsync",
		Short: "Syndication feed aggregator",
		Long: `Fetches RSS, RDF, Atom and JSON feeds on schedule and stores their entries in a local database.

The update scheduler is controlled over HTTP API served by "feedsync serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(flags.debug)
			if err != nil {
				return err
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	persistent := command.PersistentFlags()
	persistent.BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	persistent.StringVarP(&flags.configPath, "config", "c", "feedsync.yaml", "configuration file path")
	persistent.StringVar(&flags.dbPath, "db", "feeds.db", "database path")

	command.AddCommand(
		newServeCommand(&flags),
		newAddCommand(&flags),
		newRemoveCommand(&flags),
		newListCommand(&flags),
		newEntriesCommand(&flags),
		newFetchCommand(&flags),
		newUpdateCommand(&flags),
	)

	return command
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.DisableCaller = true
	loggerConfig.DisableStacktrace = true
	if !debug {
		loggerConfig.Level.SetLevel(zap.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("unable to create logger: %w", err)
	}

	return logger.Sugar(), nil
}

func (f *globalFlags) loadConfig() (*config.Config, error) {
	c, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to load configuration: %w", err)
	}
	return c, nil
}

func (f *globalFlags) withDatabase(ctx context.Context, handler func(db *database.Database) error) (retErr error) {
	db, err := database.Open(ctx, f.dbPath)
	if err != nil {
		return fmt.Errorf("unable to open the database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("unable to close the database: %w", err)
		}
	}()

	return handler(db)
}
