// Package services – CatalogImportService
//
// This file implements the catalog import: it pulls the full film list from
// the external catalog source and caches it locally, upserting by title so a
// re-import refreshes rows instead of duplicating them. The source is a
// narrow injected interface, which keeps the service deterministic under
// test.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-movie-journal/internal/ghibli"
	"github.com/tbourn/go-movie-journal/internal/repo"
)

// FilmCatalogSource supplies the full film catalog from a remote service.
// *ghibli.Client is the production implementation.
type FilmCatalogSource interface {
	Films(ctx context.Context) ([]ghibli.Film, error)
}

// ImportReport summarizes one import run.
type ImportReport struct {
	// Saved counts rows created or refreshed.
	Saved int
	// Failed counts catalog records that could not be stored.
	Failed int
}

// CatalogImportService caches the external film catalog in the local movies
// table.
type CatalogImportService struct {
	// DB is the database handle used for all writes.
	DB *gorm.DB
	// Source is the external film catalog.
	Source FilmCatalogSource
}

// Import fetches every film from the source and upserts it by title.
//
// Semantics:
//   - A transport failure fetching the catalog is fatal: nothing is written
//     and the error is returned.
//   - Titles are trimmed and NFC-normalized before use as the natural key so
//     the same film always folds onto one row regardless of how the source
//     encoded it.
//   - Records with an empty title, and rows the database rejects, are logged
//     and counted as failed without aborting the run.
//   - poster_path is never part of the upsert, so re-imports keep existing
//     enrichment.
func (s *CatalogImportService) Import(ctx context.Context) (ImportReport, error) {
	var rep ImportReport

	films, err := s.Source.Films(ctx)
	if err != nil {
		return rep, err
	}

	for _, f := range films {
		title := norm.NFC.String(strings.TrimSpace(f.Title))
		if title == "" {
			rep.Failed++
			log.Warn().Str("film_id", f.ID).Msg("catalog record has no title, skipping")
			continue
		}

		if _, err := repo.UpsertMovie(ctx, s.DB, title, f.Description, f.ReleaseDate, f.RTScore); err != nil {
			rep.Failed++
			log.Warn().Err(err).Str("title", title).Msg("failed to store catalog record")
			continue
		}
		rep.Saved++
		log.Debug().Str("title", title).Msg("catalog record saved")
	}

	log.Info().Int("saved", rep.Saved).Int("failed", rep.Failed).Msg("catalog import finished")
	return rep, nil
}
