// Package main is the entry point for the LinkSOC API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linksoc/internal/app"
	"linksoc/internal/config"
	v1 "linksoc/internal/infrastructure/http/v1"
	"linksoc/internal/infrastructure/worker"
)

func main() {
	cfg, err := config.Load(config.Flags("server"), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting linksoc server", "env", cfg.App.Env, "memory_store", cfg.MemoryStore())

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	// --- Housekeeping ---
	if len(a.Housekeeping) > 0 {
		housekeeper := worker.NewHousekeeper(cfg.Idempotency.CleanupInterval, log, a.Housekeeping...)
		stop := housekeeper.Start(ctx)
		defer stop()
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           a.Pool,
		Logger:         log,
		Metrics:        a.Metrics,
		JWTValidator:   a.JWT,
		Idempotency:    a.Idempotency,
		AuthService:    a.Auth,
		LabelService:   a.Labels,
		ReprintService: a.Reprint,
		TaskService:    a.Tasks,
		RuleService:    a.Rules,
		Debug:          cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
