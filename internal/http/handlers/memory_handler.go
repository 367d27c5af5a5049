// Memory HTTP handlers.
//
// This file exposes the REST endpoints for movie memories:
//   - GET    /memories        (list, paginated, ETag support)
//   - POST   /memories        (create-or-update for a film, idempotent)
//   - PUT    /memories/{id}   (partial update)
//   - DELETE /memories/{id}   (delete)
//
// Handlers are transport-thin: they validate input, delegate to application
// services, and translate domain/service errors into HTTP results. All four
// endpoints operate on the authenticated user's own rows only.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-movie-journal/internal/domain"
	"github.com/tbourn/go-movie-journal/internal/http/middleware"
	"github.com/tbourn/go-movie-journal/internal/repo"
	"github.com/tbourn/go-movie-journal/internal/services"
	"github.com/tbourn/go-movie-journal/internal/utils"
)

//
// Service contracts (context-aware)
//

// MemoryService defines the memory lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MemoryService interface {
	// List returns all memories for a user (legacy, non-paginated).
	List(ctx context.Context, userID string) ([]domain.Memory, error)
	// ListPage returns a page of memories for a user and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Memory, int64, error)
	// GetForMovie returns the user's memory for a film, if any.
	GetForMovie(ctx context.Context, userID, movieID string) (*domain.Memory, error)
	// Upsert creates or overwrites the memory for (user, movie).
	Upsert(ctx context.Context, userID string, in services.UpsertMemoryInput) (*domain.Memory, error)
	// Update applies partial field updates to a memory owned by the user.
	Update(ctx context.Context, userID, memoryID string, in services.MemoryFields) (*domain.Memory, error)
	// Delete removes a memory owned by the user.
	Delete(ctx context.Context, userID, memoryID string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for movies and memories. It depends on an
// abstract service interface to keep transport concerns separate from
// business logic; the raw DB handle is used only for read-side extras
// (ETag stats, idempotency replays).
type Handlers struct {
	memSvc    MemoryService
	db        *gorm.DB
	imageBase string
	idemTTL   time.Duration
}

// New constructs and returns a Handlers instance bound to the given service.
// imageBase is the public base URL for poster images; idemTTL bounds how long
// an Idempotency-Key replay stays valid.
func New(memSvc MemoryService, db *gorm.DB, imageBase string, idemTTL time.Duration) *Handlers {
	return &Handlers{memSvc: memSvc, db: db, imageBase: imageBase, idemTTL: idemTTL}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := c.GetHeader("X-User-ID"); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// SaveMemoryRequest is the JSON payload for creating or overwriting the
// memory attached to a film. MovieID and MovieTitle are required on every
// save; the remaining fields are optional and, when omitted, keep whatever
// an earlier save stored.
type SaveMemoryRequest struct {
	// MovieID is the external film identifier the memory attaches to.
	MovieID string `json:"movie_id" binding:"required" example:"2baf70d1-42bb-4437-b551-e5fed5a87abe"`
	// MovieTitle is the denormalized film title (1–255 chars).
	MovieTitle string `json:"movie_title" binding:"required" example:"Kiki's Delivery Service"`
	// WatchedOn is a calendar date in YYYY-MM-DD form.
	WatchedOn *string `json:"watched_on,omitempty" example:"2025-11-02"`
	// Rating is an integer in [1,5].
	Rating *int `json:"rating,omitempty" example:"5"`
	// Feeling is a short free-text mood (≤ 255 chars).
	Feeling *string `json:"feeling,omitempty" example:"cozy"`
	// Notes is unbounded free text.
	Notes *string `json:"notes,omitempty" example:"watched with mom"`
}

// UpdateMemoryRequest is the JSON payload for partially updating an existing
// memory. Every field is optional; omitted fields are left unchanged.
type UpdateMemoryRequest struct {
	WatchedOn *string `json:"watched_on,omitempty" example:"2025-11-02"`
	Rating    *int    `json:"rating,omitempty" example:"4"`
	Feeling   *string `json:"feeling,omitempty" example:"bittersweet"`
	Notes     *string `json:"notes,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"page_size" example:"20"`
	Total      int64 `json:"total" example:"42"`
	TotalPages int   `json:"total_pages" example:"3"`
	HasNext    bool  `json:"has_next" example:"true"`
}

// ListMemoriesResponse is the payload returned by the memories listing.
type ListMemoriesResponse struct {
	Memories   []domain.Memory `json:"memories"`
	Pagination Pagination      `json:"pagination"`
}

// clampPagination reads page/page_size query params with defaults and caps.
func clampPagination(c *gin.Context) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), 1)
	pageSize = utils.AtoiDefault(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// ListMemories godoc
// @ID          listMemories
// @Summary     List memories (paginated)
// @Description Returns a page of the user's movie memories, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Memories
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListMemoriesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /memories [get]
func (h *Handlers) ListMemories(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.MemoriesStats(ctx, h.db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"memories:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.memSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	resp := ListMemoriesResponse{
		Memories: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	}
	ok(c, http.StatusOK, resp)
}

// SaveMemory godoc
// @ID          saveMemory
// @Summary     Create or update the memory for a film
// @Description Upserts the authenticated user's memory for (user, movie_id). A second save for the same film overwrites the first; omitted optional fields keep their stored values. Supports Idempotency-Key replays.
// @Tags        Memories
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Safe-retry key"
// @Param       body             body    handlers.SaveMemoryRequest true "Memory payload"
//
// @Success     200  {object} domain.Memory
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /memories [post]
func (h *Handlers) SaveMemory(c *gin.Context) {
	var req SaveMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "movie_id and movie_title are required")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)

	// Serve a stored replay instead of re-executing the write.
	if middleware.IsReplay(c) && h.db != nil {
		if key, okKey := middleware.GetIdempotencyKey(c); okKey {
			if rec, err := repo.GetIdempotency(ctx, h.db, uid, key, time.Now().UTC()); err == nil {
				if m, err := repo.GetMemory(ctx, h.db, rec.MemoryID); err == nil {
					ok(c, rec.Status, m)
					return
				}
			}
		}
	}

	mem, err := h.memSvc.Upsert(ctx, uid, services.UpsertMemoryInput{
		MovieID:    req.MovieID,
		MovieTitle: req.MovieTitle,
		MemoryFields: services.MemoryFields{
			WatchedOn: req.WatchedOn,
			Rating:    req.Rating,
			Feeling:   req.Feeling,
			Notes:     req.Notes,
		},
	})
	if err != nil {
		if ve, isVal := services.AsValidationError(err); isVal {
			failFields(c, http.StatusBadRequest, ErrCodeValidationFailed, "one or more fields are invalid", ve.Fields)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, err.Error())
		return
	}

	// Record the idempotency key (best effort; duplicates are fine).
	if key, okKey := middleware.GetIdempotencyKey(c); okKey && h.db != nil {
		if _, err := repo.CreateIdempotency(ctx, h.db, uid, key, mem.ID, http.StatusOK, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("failed to record idempotency key")
		}
	}

	ok(c, http.StatusOK, mem)
}

// UpdateMemory godoc
// @ID          updateMemory
// @Summary     Update a memory
// @Description Partially updates a memory owned by the current user. Omitted fields are left unchanged.
// @Tags        Memories
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Memory ID (UUID)"       format(uuid)
// @Param       body       body    handlers.UpdateMemoryRequest true "Fields to update"
//
// @Success     200  {object} domain.Memory
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     403  {object} handlers.ErrorResponse "Memory owned by another user"
// @Failure     404  {object} handlers.ErrorResponse "Memory not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /memories/{id} [put]
func (h *Handlers) UpdateMemory(c *gin.Context) {
	memoryID := c.Param("id")
	if _, err := uuid.Parse(memoryID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "memory id must be a UUID")
		return
	}

	var req UpdateMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid payload")
		return
	}

	mem, err := h.memSvc.Update(c.Request.Context(), userID(c), memoryID, services.MemoryFields{
		WatchedOn: req.WatchedOn,
		Rating:    req.Rating,
		Feeling:   req.Feeling,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemoryNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "memory not found")
		case errors.Is(err, services.ErrMemoryForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "memory belongs to another user")
		default:
			if ve, isVal := services.AsValidationError(err); isVal {
				failFields(c, http.StatusBadRequest, ErrCodeValidationFailed, "one or more fields are invalid", ve.Fields)
				return
			}
			fail(c, http.StatusInternalServerError, ErrCodeSaveFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, mem)
}

// DeleteMemory godoc
// @ID          deleteMemory
// @Summary     Delete a memory
// @Description Removes a memory owned by the current user. Deleting an id that no longer exists is a 404, not a silent success.
// @Tags        Memories
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Memory ID (UUID)"       format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Invalid id"
// @Failure     403  {object} handlers.ErrorResponse "Memory owned by another user"
// @Failure     404  {object} handlers.ErrorResponse "Memory not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /memories/{id} [delete]
func (h *Handlers) DeleteMemory(c *gin.Context) {
	memoryID := c.Param("id")
	if _, err := uuid.Parse(memoryID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "memory id must be a UUID")
		return
	}

	if err := h.memSvc.Delete(c.Request.Context(), userID(c), memoryID); err != nil {
		switch {
		case errors.Is(err, services.ErrMemoryNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "memory not found")
		case errors.Is(err, services.ErrMemoryForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "memory belongs to another user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		}
		return
	}

	noContent(c)
}
