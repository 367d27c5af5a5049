// Package services – MemoryService
//
// This file implements the MemoryService, which governs the lifecycle of a
// user's movie memories. It enforces the business rules around them: at most
// one memory per (user, movie) pair, strict ownership of every mutation, and
// field validation before any write. Service-level errors
// (e.g. *ValidationError, ErrMemoryNotFound, ErrMemoryForbidden) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-movie-journal/internal/domain"
	"github.com/tbourn/go-movie-journal/internal/repo"
)

const (
	// maxTitleLen caps the denormalized movie title by rune length.
	maxTitleLen = 255
	// maxFeelingLen caps the feeling field by rune length.
	maxFeelingLen = 255
	// watchedOnLayout is the accepted calendar date format for watched_on.
	watchedOnLayout = "2006-01-02"
)

// MemoryFields carries the optional, user-editable attributes of a memory.
// A nil pointer means "not provided": on the upsert and update paths the
// stored value is left unchanged, never cleared.
type MemoryFields struct {
	// WatchedOn is a calendar date in YYYY-MM-DD form.
	WatchedOn *string
	// Rating is an integer in [1,5].
	Rating *int
	// Feeling is a short free-text mood, at most 255 runes.
	Feeling *string
	// Notes is unbounded free text.
	Notes *string
}

// UpsertMemoryInput is the full payload of a save from the film detail view.
// MovieID and MovieTitle are required on every call: they key the row and
// label it for display.
type UpsertMemoryInput struct {
	MovieID    string
	MovieTitle string
	MemoryFields
}

// MemoryService implements the use-cases around movie memories. It validates
// input, enforces ownership, and persists rows using the provided GORM
// handle. The one-memory-per-(user, movie) invariant is pushed down to the
// storage layer: Upsert issues a single atomic insert-or-update so concurrent
// duplicate submissions cannot fork the row.
type MemoryService struct {
	// DB is the database handle used for all memory operations.
	DB *gorm.DB
}

// List returns all memories owned by userID, most recently created first.
func (s *MemoryService) List(ctx context.Context, userID string) ([]domain.Memory, error) {
	return repo.ListMemories(ctx, s.DB, userID)
}

// ListPage returns a page of the user's memories plus the total count.
// It applies defaults for invalid page/pageSize.
func (s *MemoryService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Memory, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountMemories(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Memory{}, 0, nil
	}

	items, err := repo.ListMemoriesPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// GetForMovie returns the memory userID keeps for movieID, or
// ErrMemoryNotFound when there is none.
func (s *MemoryService) GetForMovie(ctx context.Context, userID, movieID string) (*domain.Memory, error) {
	m, err := repo.GetMemoryForMovie(ctx, s.DB, userID, movieID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemoryNotFound
	}
	return m, err
}

// Upsert creates the memory for (userID, in.MovieID) or overwrites the
// existing one. Field policy: fields omitted from in are preserved on the
// update path and stored as null on first creation; MovieID and MovieTitle
// are required on every call.
//
// Validation happens before any write and failures surface as
// *ValidationError with per-field detail. The write itself is a single
// INSERT ... ON CONFLICT DO UPDATE, so two near-simultaneous saves for the
// same pair produce exactly one row with the second writer's values.
func (s *MemoryService) Upsert(ctx context.Context, userID string, in UpsertMemoryInput) (*domain.Memory, error) {
	fieldErrs := map[string]string{}

	movieID := strings.TrimSpace(in.MovieID)
	if movieID == "" {
		fieldErrs["movie_id"] = "required"
	}
	title := strings.TrimSpace(in.MovieTitle)
	switch {
	case title == "":
		fieldErrs["movie_title"] = "required"
	case utf8.RuneCountInString(title) > maxTitleLen:
		fieldErrs["movie_title"] = "must be at most 255 characters"
	}

	watchedOn, updates := validateFields(in.MemoryFields, fieldErrs)
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	now := time.Now().UTC()
	mem := &domain.Memory{
		ID:         uuid.NewString(),
		UserID:     userID,
		MovieID:    movieID,
		MovieTitle: title,
		WatchedOn:  watchedOn,
		Rating:     in.Rating,
		Feeling:    in.Feeling,
		Notes:      in.Notes,
		CreatedAt:  now,
	}

	// The conflict branch rewrites only what this call provided, plus the
	// always-present title, so earlier saves keep their other fields.
	updates["movie_title"] = title
	updates["updated_at"] = now

	return repo.UpsertMemory(ctx, s.DB, mem, updates)
}

// Update applies partial field updates to an existing memory owned by
// userID. It fails with ErrMemoryNotFound when memoryID does not exist and
// with ErrMemoryForbidden when the row belongs to someone else; both checks
// run before any mutation.
func (s *MemoryService) Update(ctx context.Context, userID, memoryID string, in MemoryFields) (*domain.Memory, error) {
	if _, err := s.loadOwned(ctx, userID, memoryID); err != nil {
		return nil, err
	}

	fieldErrs := map[string]string{}
	_, updates := validateFields(in, fieldErrs)
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	if len(updates) > 0 {
		if err := repo.UpdateMemory(ctx, s.DB, memoryID, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemoryNotFound
			}
			return nil, err
		}
	}

	m, err := repo.GetMemory(ctx, s.DB, memoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemoryNotFound
	}
	return m, err
}

// Delete removes a memory owned by userID. Deleting an id that never existed
// or was already deleted yields ErrMemoryNotFound, never a silent no-op.
func (s *MemoryService) Delete(ctx context.Context, userID, memoryID string) error {
	if _, err := s.loadOwned(ctx, userID, memoryID); err != nil {
		return err
	}
	if err := repo.DeleteMemory(ctx, s.DB, memoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemoryNotFound
		}
		return err
	}
	return nil
}

// loadOwned fetches a memory by id and verifies ownership. Missing rows map
// to ErrMemoryNotFound; rows owned by a different user map to
// ErrMemoryForbidden. Used uniformly by Update and Delete so the guard stays
// in one place.
func (s *MemoryService) loadOwned(ctx context.Context, userID, memoryID string) (*domain.Memory, error) {
	m, err := repo.GetMemory(ctx, s.DB, memoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemoryNotFound
		}
		return nil, err
	}
	if m.UserID != userID {
		return nil, ErrMemoryForbidden
	}
	return m, nil
}

// validateFields checks the optional memory fields, recording violations in
// fieldErrs, and returns the parsed watched_on date plus the column
// assignments for the fields that were actually provided.
func validateFields(f MemoryFields, fieldErrs map[string]string) (*time.Time, map[string]interface{}) {
	updates := map[string]interface{}{}
	var watchedOn *time.Time

	if f.WatchedOn != nil {
		t, err := time.Parse(watchedOnLayout, strings.TrimSpace(*f.WatchedOn))
		if err != nil {
			fieldErrs["watched_on"] = "must be a valid date (YYYY-MM-DD)"
		} else {
			watchedOn = &t
			updates["watched_on"] = t
		}
	}
	if f.Rating != nil {
		if *f.Rating < 1 || *f.Rating > 5 {
			fieldErrs["rating"] = "must be an integer between 1 and 5"
		} else {
			updates["rating"] = *f.Rating
		}
	}
	if f.Feeling != nil {
		if utf8.RuneCountInString(*f.Feeling) > maxFeelingLen {
			fieldErrs["feeling"] = "must be at most 255 characters"
		} else {
			updates["feeling"] = *f.Feeling
		}
	}
	if f.Notes != nil {
		updates["notes"] = *f.Notes
	}

	return watchedOn, updates
}
