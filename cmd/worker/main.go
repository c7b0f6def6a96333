// Package main is the entry point for the LinkSOC background worker.
// It runs the housekeeping jobs against PostgreSQL outside the API process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"linksoc/internal/app"
	"linksoc/internal/config"
	"linksoc/internal/infrastructure/worker"
)

func main() {
	cfg, err := config.Load(config.Flags("worker"), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.MemoryStore() {
		fmt.Fprintln(os.Stderr, "worker requires database.url (LINKSOC_DATABASE_URL)")
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting linksoc worker")

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	if len(a.Housekeeping) == 0 {
		log.Warn("no housekeeping jobs configured, exiting")
		return
	}

	housekeeper := worker.NewHousekeeper(cfg.Idempotency.CleanupInterval, log, a.Housekeeping...)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		housekeeper.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
