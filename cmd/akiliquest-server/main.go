// Package main provides the REST API server for AkiliQuest.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akiliquest/akiliquest/internal/app"
	"github.com/akiliquest/akiliquest/internal/config"
	"github.com/akiliquest/akiliquest/internal/server"
)

var version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from the store on startup (testing only)")
	flag.Parse()

	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	if err := run(cfg, logger, *wipeDB || os.Getenv("AKILIQUEST_WIPE_DB") == "true"); err != nil {
		slog.Error("server failed", "error", err)
		_ = closeLog()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger, wipe bool) error {
	slog.Info("starting akiliquest-server", "port", cfg.ServerPort, "store", cfg.Store, "provider", cfg.LLMProvider)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(initCtx, cfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	if wipe {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := a.WipeData(ctx)
		cancel()
		if err != nil {
			return err
		}
	}

	srv := server.New(a.Service,
		server.WithLogger(logger),
		server.WithMetrics(a.Metrics),
		server.WithCORSOrigins(cfg.CORSOrigins),
		server.WithVersion(version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = srv.ListenAndServe(ctx, ":"+cfg.ServerPort, 10*time.Second)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
