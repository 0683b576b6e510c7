package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the
// memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for reserved memory.
	// If 0, reservations are only checked against the system's free memory.
	MemoryLimitBytes int64

	// MaxConcurrentRuns is the maximum number of clustering runs executing at once.
	// If 0, defaults to 1.
	MaxConcurrentRuns int64

	// IOLimitBytesPerSec is the maximum input throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (memory, runs, IO).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Runs
	runSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = 1
	}

	c := &Controller{
		cfg:    cfg,
		runSem: semaphore.NewWeighted(cfg.MaxConcurrentRuns),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return fmt.Errorf("%w: requested %d bytes, %d of %d in use",
				ErrMemoryLimitExceeded, bytes, c.memUsed.Load(), c.cfg.MemoryLimitBytes)
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// Reserve checks and reserves memory for an allocation of the given size and
// returns a function that releases the reservation.
//
// With a hard limit configured the reservation goes through AcquireMemory.
// Otherwise the request is compared with the free memory reported by the
// operating system; if that cannot be determined the request is accepted.
func (c *Controller) Reserve(bytes int64) (func(), error) {
	if c != nil && c.memSem != nil {
		if err := c.AcquireMemory(bytes); err != nil {
			return func() {}, err
		}
		return func() { c.ReleaseMemory(bytes) }, nil
	}

	if avail, ok := AvailableMemory(); ok && bytes > 0 && uint64(bytes) > avail {
		return func() {}, fmt.Errorf("%w: requested %d bytes, %d bytes free",
			ErrMemoryLimitExceeded, bytes, avail)
	}

	if c == nil {
		return func() {}, nil
	}
	c.memUsed.Add(bytes)
	return func() { c.memUsed.Add(-bytes) }, nil
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireRun reserves a run slot.
// Blocks until a slot is free or ctx is canceled.
func (c *Controller) AcquireRun(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.runSem.Acquire(ctx, 1)
}

// TryAcquireRun attempts to reserve a run slot without blocking.
func (c *Controller) TryAcquireRun() bool {
	if c == nil {
		return true
	}
	return c.runSem.TryAcquire(1)
}

// ReleaseRun releases a run slot.
func (c *Controller) ReleaseRun() {
	if c == nil {
		return
	}
	c.runSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// IOBurst returns the largest single IO request AcquireIO accepts
// (0 if unlimited).
func (c *Controller) IOBurst() int {
	if c == nil || c.ioLimiter == nil {
		return 0
	}
	return c.ioLimiter.Burst()
}
