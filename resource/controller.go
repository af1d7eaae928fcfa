// Package resource bounds the side work around the coupling core: how many
// snapshot transfers run at once and how many bytes per second they may move.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxTransfers is the maximum number of concurrent snapshot transfers.
	// If 0, defaults to 1.
	MaxTransfers int64

	// IOLimitBytesPerSec caps snapshot transfer throughput. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces transfer concurrency and IO throughput limits.
type Controller struct {
	transferSem *semaphore.Weighted
	ioLimiter   *rate.Limiter
	inFlight    atomic.Int64
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxTransfers <= 0 {
		cfg.MaxTransfers = 1
	}

	c := &Controller{
		transferSem: semaphore.NewWeighted(cfg.MaxTransfers),
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireTransfer reserves a transfer slot, blocking until one is free or
// ctx is canceled.
func (c *Controller) AcquireTransfer(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.transferSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireTransfer reserves a transfer slot without blocking.
func (c *Controller) TryAcquireTransfer() bool {
	if c == nil {
		return true
	}
	if !c.transferSem.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseTransfer releases a transfer slot.
func (c *Controller) ReleaseTransfer() {
	if c == nil {
		return
	}
	c.transferSem.Release(1)
	c.inFlight.Add(-1)
}

// InFlight returns the number of transfers currently holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireIO waits until the IO limit allows the given number of bytes.
// Requests larger than the limiter's burst are acquired in burst-sized
// chunks, so a big transfer throttles instead of failing outright.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
