// Package services – PosterSyncService
//
// This file implements the poster enrichment job. It walks the cached
// catalog in fixed-size pages and, for every movie that does not yet carry a
// poster reference, asks the external search service for candidates and
// persists the first usable match. Failure isolation is per item: a movie
// whose lookup fails is logged and left untouched for a future run, and the
// job itself still completes successfully.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-movie-journal/internal/repo"
	"github.com/tbourn/go-movie-journal/internal/tmdb"
)

// defaultSyncPageSize is the number of movies read per page when the caller
// does not configure one.
const defaultSyncPageSize = 50

// PosterSearch supplies poster candidates for a title/year query.
// *tmdb.Client is the production implementation.
type PosterSearch interface {
	Search(ctx context.Context, query, year string) ([]tmdb.Result, error)
}

// SyncReport summarizes one poster sync run.
type SyncReport struct {
	// Updated counts movies whose poster reference was written.
	Updated int
	// Skipped counts movies that already had a poster; no external call is
	// made for them.
	Skipped int
	// Failed counts movies whose lookup failed or returned no usable result;
	// their rows are untouched and will be retried on the next run.
	Failed int
}

// PosterSyncService fills in missing poster references on cached movies
// using a best-effort match against the external search service.
//
// The job is idempotent and re-entrant: an existing poster is never
// overwritten, so re-running it (including concurrently with user-facing
// traffic) only ever writes previously-null fields. No application-level
// locking is needed.
type PosterSyncService struct {
	// DB is the database handle used for reads and poster writes.
	DB *gorm.DB
	// Search is the external poster search.
	Search PosterSearch
	// PageSize is the page size for walking the movies table; values <= 0
	// fall back to 50.
	PageSize int
}

// Sync walks every cached movie and enriches the ones lacking a poster.
//
// Per movie:
//   - poster already set: counted as skipped, no external call;
//   - search transport failure, zero results, or a first result without a
//     poster path: counted as failed, row untouched;
//   - otherwise the first result's poster path is persisted.
//
// "First result wins" is deliberate: title plus year disambiguates well
// enough for a small curated catalog, so no ranking logic is applied.
//
// Only a failure to read the movies table aborts the job; the partial report
// accumulated so far is returned alongside the error. Every per-item outcome
// is also exported as a Prometheus counter.
func (s *PosterSyncService) Sync(ctx context.Context) (SyncReport, error) {
	var rep SyncReport

	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = defaultSyncPageSize
	}

	for offset := 0; ; offset += pageSize {
		movies, err := repo.ListMoviesPage(ctx, s.DB, offset, pageSize)
		if err != nil {
			return rep, err
		}
		if len(movies) == 0 {
			break
		}

		for _, m := range movies {
			if m.PosterPath != nil && *m.PosterPath != "" {
				rep.Skipped++
				posterSyncItems.WithLabelValues(outcomeSkipped).Inc()
				log.Debug().Str("title", m.Title).Msg("poster already set, skipping")
				continue
			}

			results, err := s.Search.Search(ctx, m.Title, m.ReleaseDate)
			if err != nil {
				rep.Failed++
				posterSyncItems.WithLabelValues(outcomeFailed).Inc()
				log.Warn().Err(err).Str("title", m.Title).Msg("poster search failed")
				continue
			}
			if len(results) == 0 {
				rep.Failed++
				posterSyncItems.WithLabelValues(outcomeFailed).Inc()
				log.Warn().Str("title", m.Title).Msg("no poster search results")
				continue
			}

			first := results[0]
			if first.PosterPath == "" {
				rep.Failed++
				posterSyncItems.WithLabelValues(outcomeFailed).Inc()
				log.Warn().Str("title", m.Title).Msg("first search result has no poster")
				continue
			}

			if err := repo.SetMoviePoster(ctx, s.DB, m.ID, first.PosterPath); err != nil {
				rep.Failed++
				posterSyncItems.WithLabelValues(outcomeFailed).Inc()
				log.Warn().Err(err).Str("title", m.Title).Msg("failed to store poster")
				continue
			}
			rep.Updated++
			posterSyncItems.WithLabelValues(outcomeUpdated).Inc()
			log.Info().Str("title", m.Title).Str("poster_path", first.PosterPath).Msg("poster saved")
		}

		if len(movies) < pageSize {
			break
		}
	}

	log.Info().
		Int("updated", rep.Updated).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Msg("poster sync finished")
	return rep, nil
}
