package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-movie-journal/internal/config"
	"github.com/tbourn/go-movie-journal/internal/sysutil"
)

func newRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "moviejournal",
		Short:         "Personal movie journal backend",
		Long:          "Serves the movie journal HTTP API and runs catalog import and poster enrichment jobs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env is fine; real deployments use process env.
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("file", envFile).Msg("could not load env file")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newImportFilmsCommand())
	rootCmd.AddCommand(newSyncPostersCommand())

	return rootCmd
}

// loadConfig reads env config and applies the logging settings it carries.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return cfg, nil
}
