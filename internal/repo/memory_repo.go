// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Memory
// model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules (validation, ownership checks) to
// the services package.
//
// Error semantics:
//   - When a memory is not found, functions return gorm.ErrRecordNotFound
//     (exported as ErrNotFound in movie_repo.go).
//   - The one-memory-per-(user, movie) invariant is enforced at the database
//     level by a unique index; UpsertMemory resolves conflicts atomically with
//     INSERT ... ON CONFLICT DO UPDATE rather than a read-then-write pair.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-movie-journal/internal/domain"
)

// ListMemories returns all memories belonging to userID, ordered by creation
// time descending (most recent first). It returns an empty slice if the user
// has no memories. On DB error, it returns the error.
func ListMemories(ctx context.Context, db *gorm.DB, userID string) ([]domain.Memory, error) {
	var out []domain.Memory
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountMemories returns the total number of memories owned by userID.
func CountMemories(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Memory{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListMemoriesPage returns a paginated slice of memories for userID, ordered
// by creation time descending. Use CountMemories to obtain the total for
// pagination metadata.
func ListMemoriesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Memory, error) {
	var out []domain.Memory
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetMemory fetches a memory by its ID regardless of owner. The service layer
// compares the owner itself so it can distinguish "not found" from
// "forbidden". Returns ErrNotFound when the row does not exist.
func GetMemory(ctx context.Context, db *gorm.DB, id string) (*domain.Memory, error) {
	var m domain.Memory
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMemoryForMovie fetches the memory userID keeps for movieID, or
// ErrNotFound when the user has none.
func GetMemoryForMovie(ctx context.Context, db *gorm.DB, userID, movieID string) (*domain.Memory, error) {
	var m domain.Memory
	err := db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertMemory inserts mem or, when a row for (user_id, movie_id) already
// exists, applies only the assignments in updates to that row. The statement
// is a single INSERT ... ON CONFLICT DO UPDATE, so two concurrent saves for
// the same pair can never produce two rows; the second writer's assignments
// win at the row level.
//
// Callers build updates from the fields actually provided in the request, so
// omitted fields keep their previously stored values.
//
// The persisted row is re-read by the natural key and returned, because on
// conflict the stored row keeps its original surrogate ID and creation time.
func UpsertMemory(ctx context.Context, db *gorm.DB, mem *domain.Memory, updates map[string]interface{}) (*domain.Memory, error) {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(mem).Error
	if err != nil {
		return nil, err
	}
	return GetMemoryForMovie(ctx, db, mem.UserID, mem.MovieID)
}

// UpdateMemory applies the given column assignments to the memory identified
// by id. If no rows are affected (memory missing), it returns ErrNotFound.
// Ownership must be verified by the caller before mutating.
func UpdateMemory(ctx context.Context, db *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Memory{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMemory removes the memory identified by id. Deleting an id that no
// longer exists returns ErrNotFound rather than silently succeeding, so
// callers can tell "nothing happened" from "succeeded".
func DeleteMemory(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Memory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
