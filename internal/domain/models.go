// Package domain defines the persistence models for movies and movie
// memories. These types are mapped with GORM and form the core data layer
// of the movie-journal application.
package domain

import "time"

// Movie is a locally cached film catalog entry. Rows are created by the
// catalog import (upsert keyed by title) and later enriched with a poster
// path by the poster sync job.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Title: natural dedup key for the catalog import; unique.
//   - Description: synopsis text from the catalog source.
//   - ReleaseDate: release year kept as free text because the source encodes
//     it inconsistently.
//   - RTScore: optional critic score (0-100 expected, not enforced).
//   - PosterPath: optional poster reference, populated asynchronously by the
//     poster sync job and never overwritten once set.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Movie struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Title       string    `json:"title"        gorm:"type:varchar(255);not null;uniqueIndex:ux_movies_title"`
	Description string    `json:"description"  gorm:"type:text"`
	ReleaseDate string    `json:"release_date" gorm:"type:varchar(16)"`
	RTScore     *int      `json:"rt_score,omitempty"    gorm:"column:rt_score"`
	PosterPath  *string   `json:"poster_path,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Movie.
func (Movie) TableName() string { return "movies" }

// Memory is a user-authored annotation attached to exactly one film for
// exactly one user. A user can keep at most one memory per film (enforced
// by a unique index); a second save for the same pair overwrites the first.
//
// MovieID is a string identifier rather than a local foreign key: the film
// detail view is served from the external catalog, so a memory may reference
// a film that was never cached locally. MovieTitle is denormalized so the
// memories listing renders without a join.
//
// Rows are hard-deleted. Keeping soft-deleted rows around would shadow the
// (user_id, movie_id) unique index and block a later re-save for the same
// film.
type Memory struct {
	ID         string     `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string     `json:"user_id"     gorm:"type:varchar(64);not null;index;uniqueIndex:ux_memories_user_movie,priority:1"`
	MovieID    string     `json:"movie_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_memories_user_movie,priority:2"`
	MovieTitle string     `json:"movie_title" gorm:"type:varchar(255);not null"`
	WatchedOn  *time.Time `json:"watched_on,omitempty" gorm:"type:date"`
	Rating     *int       `json:"rating,omitempty"     gorm:"check:rating BETWEEN 1 AND 5"`
	Feeling    *string    `json:"feeling,omitempty"    gorm:"type:varchar(255)"`
	Notes      *string    `json:"notes,omitempty"      gorm:"type:text"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Memory.
func (Memory) TableName() string { return "memories" }
