// Command contacts-web serves the contact manager UI on top of the contacts API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactmanager/config"
	"contactmanager/internal/adapters/contactsapi"
	"contactmanager/internal/adapters/view"
	deliveryhttp "contactmanager/internal/delivery/http"
	"contactmanager/internal/delivery/http/controllers"
	"contactmanager/internal/domain"
	"contactmanager/internal/services"

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
		logger.Error("contacts-web stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := contactsapi.NewHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}, cfg.ContactsAPIURL)
	manager := services.NewContactManager(logger, client, domain.NewContactCollection(), cfg.RequestTimeout)
	renderer, err := view.NewTemplateRenderer()
	if err != nil {
		return err
	}

	// The first page view retries when the API is not up yet.
	if err := manager.Refresh(ctx); err != nil {
		logger.Warn("initial contact load failed", "api", cfg.ContactsAPIURL, "err", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewWebRouter(logger, controllers.NewWebController(logger, manager, renderer)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("contact manager listening", "addr", server.Addr, "api", cfg.ContactsAPIURL)
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
