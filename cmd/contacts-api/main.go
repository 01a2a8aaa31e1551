// Command contacts-api serves the reference /api/contacts REST API.
//
//	@title			Contacts API
//	@version		1.0
//	@description	Reference REST API backing the contact manager front-end.
//	@BasePath		/
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactmanager/config"
	deliveryhttp "contactmanager/internal/delivery/http"
	"contactmanager/internal/delivery/http/controllers"
	"contactmanager/internal/delivery/http/middleware"
	"contactmanager/internal/domain"
	"contactmanager/internal/repository/memory"
	"contactmanager/internal/repository/postgres"
	"contactmanager/internal/repository/sqlite"
	"contactmanager/internal/services"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	if err := run(cfg, logger); err != nil {
		logger.Error("contacts-api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := services.NewContactService(repo, cfg.RequestTimeout)
	handler := deliveryhttp.NewAPIRouter(logger, controllers.NewContactController(logger, svc), deliveryhttp.APIOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("contacts api listening", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openRepository picks Postgres when DATABASE_URL is set, then SQLite when SQLITE_PATH is set,
// and the in-memory store otherwise.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ContactRepository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Warn("no database configured, contacts are kept in memory")
		return memory.NewContactRepository(), func() {}, nil
	}
	if cfg.DBUrl == "" {
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath)
		return sqlite.NewContactRepository(db), func() { _ = db.Close() }, nil
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := postgres.EnsureSchema(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return postgres.NewContactRepository(db), func() { _ = db.Close() }, nil
}
