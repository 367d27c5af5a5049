package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-movie-journal/internal/config"
	"github.com/tbourn/go-movie-journal/internal/ghibli"
	httpapi "github.com/tbourn/go-movie-journal/internal/http"
	"github.com/tbourn/go-movie-journal/internal/observability"
	"github.com/tbourn/go-movie-journal/internal/repo"
	"github.com/tbourn/go-movie-journal/internal/schedule"
	"github.com/tbourn/go-movie-journal/internal/services"
	"github.com/tbourn/go-movie-journal/internal/sysutil"
	"github.com/tbourn/go-movie-journal/internal/tmdb"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func newServeCommand() *cobra.Command {
	var importOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// Container deployments set IMPORT_ON_START instead of passing flags.
			if !importOnStart {
				importOnStart = sysutil.IsTruthy(os.Getenv("IMPORT_ON_START"))
			}
			return runServe(cmd.Context(), cfg, importOnStart)
		},
	}
	cmd.Flags().BoolVar(&importOnStart, "import-on-start", false, "Refresh the film catalog before accepting traffic")
	return cmd
}

func runServe(parent context.Context, cfg config.Config, importOnStart bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	if importOnStart {
		report, err := runImport(ctx, cfg, db)
		if err != nil {
			return err
		}
		log.Info().Int("saved", report.Saved).Int("failed", report.Failed).Msg("startup catalog import done")
	}

	// Poster enrichment on a cron schedule, when both the schedule and the
	// TMDB credentials are configured.
	var runner *schedule.Runner
	if cfg.PosterSync.Cron != "" && cfg.TMDB.APIKey != "" {
		search, err := tmdb.New(tmdb.Config{APIKey: cfg.TMDB.APIKey, BaseURL: cfg.TMDB.BaseURL})
		if err != nil {
			return err
		}
		syncSvc := &services.PosterSyncService{DB: db, Search: search, PageSize: cfg.PosterSync.PageSize}

		runner = schedule.New(ctx)
		if _, err := runner.Add(cfg.PosterSync.Cron, func(jobCtx context.Context) {
			report, err := syncSvc.Sync(jobCtx)
			if err != nil {
				log.Error().Err(err).Msg("scheduled poster sync failed")
				return
			}
			log.Info().
				Int("updated", report.Updated).
				Int("skipped", report.Skipped).
				Int("failed", report.Failed).
				Msg("scheduled poster sync done")
		}); err != nil {
			return err
		}
		runner.Start()
		defer runner.Stop()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDatabase opens the SQLite store, runs migrations, and attaches the
// GORM tracing plugin when OTel is on.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, err
	}
	if cfg.OTEL.Enabled {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// runImport refreshes the film catalog from the upstream API.
func runImport(ctx context.Context, cfg config.Config, db *gorm.DB) (services.ImportReport, error) {
	source, err := ghibli.New(ghibli.Config{BaseURL: cfg.Ghibli.BaseURL})
	if err != nil {
		return services.ImportReport{}, err
	}
	svc := &services.CatalogImportService{DB: db, Source: source}
	return svc.Import(ctx)
}
