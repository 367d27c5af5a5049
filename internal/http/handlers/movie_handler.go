// Movie HTTP handlers.
//
// This file exposes the read-side REST endpoints for the cached film catalog:
//   - GET /films       (full catalog, release order, ETag support)
//   - GET /films/{id}  (single film plus the current user's memory, if any)
//
// The catalog is written by the import and poster sync jobs; these handlers
// only read it and decorate rows with a computed public poster URL.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-movie-journal/internal/domain"
	"github.com/tbourn/go-movie-journal/internal/repo"
	"github.com/tbourn/go-movie-journal/internal/services"
	"github.com/tbourn/go-movie-journal/internal/tmdb"
)

// MovieResponse is a catalog entry decorated with the full poster URL so
// clients never need to know the image host.
type MovieResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ReleaseDate string  `json:"release_date"`
	RTScore     *int    `json:"rt_score,omitempty"`
	PosterPath  *string `json:"poster_path,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
}

// MovieDetailResponse pairs a film with the authenticated user's memory for
// it. Memory is null when the user has not saved one.
type MovieDetailResponse struct {
	Movie  MovieResponse  `json:"movie"`
	Memory *domain.Memory `json:"memory"`
}

// movieResponse maps a stored movie onto its wire form.
func (h *Handlers) movieResponse(m domain.Movie) MovieResponse {
	out := MovieResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		RTScore:     m.RTScore,
		PosterPath:  m.PosterPath,
	}
	if m.PosterPath != nil {
		out.PosterURL = tmdb.PosterURL(h.imageBase, *m.PosterPath)
	}
	return out
}

// ListMovies godoc
// @ID          listMovies
// @Summary     List the film catalog
// @Description Returns all cached films in release order. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Movies
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  handlers.MovieResponse
// @Header      200  {string} ETag "Weak ETag for current catalog"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /films [get]
func (h *Handlers) ListMovies(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort). The tag covers both import and poster
	// sync writes because each bumps updated_at.
	if h.db != nil {
		count, maxTS, err := repo.MoviesStats(ctx, h.db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"movies:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	movies, err := repo.ListMovies(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	out := make([]MovieResponse, 0, len(movies))
	for _, m := range movies {
		out = append(out, h.movieResponse(m))
	}
	ok(c, http.StatusOK, out)
}

// GetMovie godoc
// @ID          getMovie
// @Summary     Get a film with the current user's memory
// @Description Returns a single cached film and, when the authenticated user has saved one, their memory for it.
// @Tags        Movies
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Film ID"
//
// @Success     200  {object} handlers.MovieDetailResponse
// @Failure     404  {object} handlers.ErrorResponse "Film not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /films/{id} [get]
func (h *Handlers) GetMovie(c *gin.Context) {
	ctx := c.Request.Context()
	movieID := c.Param("id")

	movie, err := repo.GetMovie(ctx, h.db, movieID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "film not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	resp := MovieDetailResponse{Movie: h.movieResponse(*movie)}
	if mem, err := h.memSvc.GetForMovie(ctx, userID(c), movie.ID); err == nil {
		resp.Memory = mem
	} else if !errors.Is(err, services.ErrMemoryNotFound) {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, resp)
}
