package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newImportFilmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-films",
		Short: "Fetch the film catalog and cache it locally",
		Long:  "Downloads the full Studio Ghibli film list and upserts it into the local database. Re-running refreshes existing rows instead of duplicating them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}

			report, err := runImport(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Outcome", "Films"},
				[][]string{
					{"saved", strconv.Itoa(report.Saved)},
					{"failed", strconv.Itoa(report.Failed)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
