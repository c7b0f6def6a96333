// Package worker runs periodic housekeeping jobs.
package worker

import (
	"context"
	"sync"
	"time"

	"linksoc/pkg/logger"
)

// Cleaner removes expired records and reports how many were removed.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Job is a named cleaner run on every tick.
type Job struct {
	Name    string
	Cleaner Cleaner
}

// Housekeeper runs jobs on a fixed interval until its context is cancelled.
type Housekeeper struct {
	interval time.Duration
	jobs     []Job
	log      *logger.Logger
}

// NewHousekeeper creates a housekeeper.
func NewHousekeeper(interval time.Duration, log *logger.Logger, jobs ...Job) *Housekeeper {
	return &Housekeeper{
		interval: interval,
		jobs:     jobs,
		log:      log.WithComponent("housekeeper"),
	}
}

// Start runs the housekeeper in a goroutine. The returned function cancels it
// and waits for the current tick to finish.
func (h *Housekeeper) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Run(ctx)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// Run blocks, running every job once immediately and then on each tick.
func (h *Housekeeper) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.tick(ctx)
		}
	}
}

func (h *Housekeeper) tick(ctx context.Context) {
	for _, job := range h.jobs {
		n, err := job.Cleaner.CleanupExpired(ctx)
		if err != nil {
			if ctx.Err() == nil {
				h.log.Warnw("cleanup failed", "job", job.Name, "error", err)
			}
			continue
		}
		if n > 0 {
			h.log.Infow("cleaned up expired records", "job", job.Name, "count", n)
		}
	}
}
