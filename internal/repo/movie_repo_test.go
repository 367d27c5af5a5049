package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-movie-journal/internal/domain"
)

func newMovieDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:movierepo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Movie{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func intp(v int) *int { return &v }

func TestUpsertMovie_InsertsRow(t *testing.T) {
	db := newMovieDB(t)
	ctx := context.Background()

	m, err := UpsertMovie(ctx, db, "Castle in the Sky", "A girl falls from the sky.", "1986", intp(95))
	if err != nil {
		t.Fatalf("UpsertMovie: %v", err)
	}
	if m.ID == "" || m.Title != "Castle in the Sky" || m.ReleaseDate != "1986" {
		t.Fatalf("unexpected row: %+v", m)
	}
	if m.RTScore == nil || *m.RTScore != 95 {
		t.Fatalf("rt_score not stored: %+v", m.RTScore)
	}
}

func TestUpsertMovie_RefreshKeepsIDAndPoster(t *testing.T) {
	db := newMovieDB(t)
	ctx := context.Background()

	first, err := UpsertMovie(ctx, db, "My Neighbor Totoro", "old synopsis", "1988", intp(93))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	// Enrichment happens between imports.
	if err := SetMoviePoster(ctx, db, first.ID, "/totoro.jpg"); err != nil {
		t.Fatalf("SetMoviePoster: %v", err)
	}

	second, err := UpsertMovie(ctx, db, "My Neighbor Totoro", "new synopsis", "1988", intp(94))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert forked the row: %s vs %s", second.ID, first.ID)
	}
	if second.Description != "new synopsis" || *second.RTScore != 94 {
		t.Fatalf("catalog fields not refreshed: %+v", second)
	}
	if second.PosterPath == nil || *second.PosterPath != "/totoro.jpg" {
		t.Fatalf("re-import clobbered the poster: %+v", second.PosterPath)
	}

	var n int64
	db.Model(&domain.Movie{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestListMovies_OrdersByRelease(t *testing.T) {
	db := newMovieDB(t)
	ctx := context.Background()

	for _, m := range []struct{ title, year string }{
		{"Spirited Away", "2001"},
		{"Castle in the Sky", "1986"},
		{"Ponyo", "2008"},
	} {
		if _, err := UpsertMovie(ctx, db, m.title, "", m.year, nil); err != nil {
			t.Fatalf("seed %s: %v", m.title, err)
		}
	}

	out, err := ListMovies(ctx, db)
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(out) != 3 || out[0].Title != "Castle in the Sky" || out[2].Title != "Ponyo" {
		t.Fatalf("unexpected order: %+v", out)
	}
}

func TestListMovies_EmptyCatalog(t *testing.T) {
	db := newMovieDB(t)
	out, err := ListMovies(context.Background(), db)
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty catalog, got %d rows", len(out))
	}
}

func TestListMoviesPage_WalksTheTable(t *testing.T) {
	db := newMovieDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := UpsertMovie(ctx, db, fmt.Sprintf("Film %d", i), "", "2000", nil); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	seen := map[string]bool{}
	for offset := 0; ; offset += 2 {
		page, err := ListMoviesPage(ctx, db, offset, 2)
		if err != nil {
			t.Fatalf("ListMoviesPage: %v", err)
		}
		if len(page) == 0 {
			break
		}
		for _, m := range page {
			if seen[m.ID] {
				t.Fatalf("row %s returned twice", m.ID)
			}
			seen[m.ID] = true
		}
	}
	if len(seen) != 5 {
		t.Fatalf("pagination missed rows: saw %d of 5", len(seen))
	}

	total, err := CountMovies(ctx, db)
	if err != nil || total != 5 {
		t.Fatalf("CountMovies = %d, %v", total, err)
	}
}

func TestGetMovie_NotFound(t *testing.T) {
	db := newMovieDB(t)
	if _, err := GetMovie(context.Background(), db, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetMoviePoster_MissingRow(t *testing.T) {
	db := newMovieDB(t)
	if err := SetMoviePoster(context.Background(), db, uuid.NewString(), "/x.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
