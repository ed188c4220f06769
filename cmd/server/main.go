package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bcnelson/pairstore/internal/api"
	"github.com/bcnelson/pairstore/internal/app"
	"github.com/bcnelson/pairstore/internal/config"
	"github.com/bcnelson/pairstore/internal/logging"
)

func main() {
	os.Exit(run())
}

// run starts the server and blocks until it stops. Deferred cleanup runs
// before the exit code is returned.
func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}

	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("error", err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize document backend
	doc, err := app.OpenDocument(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open document backend", slog.String("backend", cfg.Store.Backend), slog.Any("error", err))
		return 1
	}
	defer doc.Close()

	store := app.NewPairStore(cfg, doc, log)

	if cfg.Server.APIKey == "" {
		log.Warn("API_KEY not set; the API is unauthenticated")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(store, cfg.Server.APIKey, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info("starting pairstore",
		slog.String("addr", cfg.Server.Addr()),
		slog.String("backend", cfg.Store.Backend),
		slog.String("document", cfg.Store.Document))

	if err := serve(ctx, server, log, 30*time.Second); err != nil {
		log.Error("server failed", slog.Any("error", err))
		return 1
	}
	return 0
}

// serve runs server until ctx is done, then shuts it down gracefully
// within grace. A listen failure is returned immediately.
func serve(ctx context.Context, server *http.Server, log *slog.Logger, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
