package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-movie-journal/internal/services"
	"github.com/tbourn/go-movie-journal/internal/tmdb"
)

func newSyncPostersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-posters",
		Short: "Look up poster art for cached films",
		Long:  "Scans cached films without poster art and fills them in from the TMDb search API. Films that already have a poster are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.TMDB.APIKey == "" {
				return errors.New("TMDB_API_KEY is required for poster sync")
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			search, err := tmdb.New(tmdb.Config{APIKey: cfg.TMDB.APIKey, BaseURL: cfg.TMDB.BaseURL})
			if err != nil {
				return err
			}

			svc := &services.PosterSyncService{DB: db, Search: search, PageSize: cfg.PosterSync.PageSize}
			report, err := svc.Sync(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Outcome", "Films"},
				[][]string{
					{"updated", strconv.Itoa(report.Updated)},
					{"skipped", strconv.Itoa(report.Skipped)},
					{"failed", strconv.Itoa(report.Failed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
