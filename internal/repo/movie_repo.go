// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Movie model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a movie is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - UpsertMovie(ctx, db, title, description, releaseDate, rtScore) -> *domain.Movie, error
//     Inserts a catalog row or, when the title already exists, refreshes its
//     catalog fields in place. poster_path is never touched by the upsert.
//
//   - ListMovies(ctx, db) -> []domain.Movie, error
//     Returns the whole cached catalog in release order.
//
//   - ListMoviesPage(ctx, db, offset, limit) -> []domain.Movie, error
//     Returns a slice of the catalog in storage order; used by the poster
//     sync job to walk the table in fixed-size pages.
//
//   - GetMovie(ctx, db, id) -> *domain.Movie, error
//     Fetches a single movie by ID, or ErrNotFound if missing.
//
//   - SetMoviePoster(ctx, db, id, posterPath) -> error
//     Writes the poster reference for a movie. Returns ErrNotFound when no
//     row was affected.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-movie-journal/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertMovie inserts a movie keyed by its title, or updates the catalog
// fields (description, release_date, rt_score) of the existing row when the
// title is already present. The poster reference is deliberately excluded
// from the conflict update so a re-import never clobbers prior enrichment.
//
// The write is a single INSERT ... ON CONFLICT statement, so concurrent
// imports of the same title cannot produce duplicate rows.
//
// On success, it returns the persisted row (the original ID is retained on
// conflict). On failure, it returns a DB error.
func UpsertMovie(ctx context.Context, db *gorm.DB, title, description, releaseDate string, rtScore *int) (*domain.Movie, error) {
	m := &domain.Movie{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		ReleaseDate: releaseDate,
		RTScore:     rtScore,
		CreatedAt:   time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "release_date", "rt_score", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return nil, err
	}

	// On conflict the stored row keeps its original ID; re-read by the
	// natural key so callers always see the persisted state.
	var out domain.Movie
	if err := db.WithContext(ctx).Where("title = ?", title).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMovies returns all cached movies ordered by release date ascending.
// It returns an empty slice when the catalog has not been imported yet.
func ListMovies(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	var out []domain.Movie
	err := db.WithContext(ctx).
		Order("release_date asc, title asc").
		Find(&out).Error
	return out, err
}

// ListMoviesPage returns a page of movies in storage order (insertion order,
// tie-broken by ID for stability). The caller computes offset and limit.
func ListMoviesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Movie, error) {
	var out []domain.Movie
	err := db.WithContext(ctx).
		Order("created_at asc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountMovies returns the total number of cached movies.
func CountMovies(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Count(&total).Error
	return total, err
}

// GetMovie fetches a single movie by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetMovie(ctx context.Context, db *gorm.DB, id string) (*domain.Movie, error) {
	var m domain.Movie
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// SetMoviePoster writes posterPath to the movie identified by id. If no rows
// are affected (movie missing), it returns ErrNotFound. On DB error, the raw
// error is returned.
func SetMoviePoster(ctx context.Context, db *gorm.DB, id, posterPath string) error {
	res := db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ?", id).
		Update("poster_path", posterPath)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
