package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"linksoc/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestHousekeeper_RunsJobsUntilStopped(t *testing.T) {
	ok := &countingCleaner{}
	failing := &countingCleaner{err: errors.New("db down")}

	h := NewHousekeeper(5*time.Millisecond, logger.Default(),
		Job{Name: "ok", Cleaner: ok},
		Job{Name: "failing", Cleaner: failing},
	)
	stop := h.Start(context.Background())

	assert.Eventually(t, func() bool { return ok.calls.Load() >= 3 }, time.Second, time.Millisecond)
	stop()

	calls := ok.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, ok.calls.Load())
	assert.GreaterOrEqual(t, failing.calls.Load(), int32(3))
}
