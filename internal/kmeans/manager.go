package kmeans

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rkmeans/distance"
	"github.com/hupe1980/rkmeans/internal/barrier"
)

// Range is a contiguous block of coordinate indices.
type Range struct {
	Start int
	Count int
}

// Partition splits [0, n) into near-equal contiguous ranges, one per thread.
// threads is clamped to [1, n]; the remainder goes to the earliest ranges.
func Partition(n, threads int) []Range {
	if n <= 0 {
		return nil
	}
	threads = min(max(threads, 1), n)

	size, rem := n/threads, n%threads
	ranges := make([]Range, threads)
	start := 0
	for i := range ranges {
		count := size
		if i < rem {
			count++
		}
		ranges[i] = Range{Start: start, Count: count}
		start += count
	}
	return ranges
}

// SubtaskManager runs the parallel steps of an iteration on a fixed set of
// workers. With a single worker the steps run synchronously on the caller's
// goroutine; otherwise each worker has a long-lived goroutine and the
// workers meet at a cyclic barrier after every step.
//
// Do, NumberOfMoves and Shutdown must be called from one goroutine.
type SubtaskManager struct {
	workers []*Worker
	logger  *slog.Logger

	// multi-worker mode only
	barrier *barrier.Barrier
	tasks   []chan task
	group   *errgroup.Group
	poolCtx context.Context
	cancel  context.CancelFunc

	moves int

	closed       atomic.Bool
	shutdownOnce sync.Once
	shutdownErr  error
}

// NewSubtaskManager creates a manager for n coordinates split across threads
// workers. Worker goroutines start immediately in multi-worker mode.
func NewSubtaskManager(n, threads int, fn distance.Func, logger *slog.Logger) (*SubtaskManager, error) {
	if n <= 0 {
		return nil, ErrEmptyInput
	}
	if threads <= 0 {
		return nil, ErrInvalidThreads
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ranges := Partition(n, threads)
	m := &SubtaskManager{
		workers: make([]*Worker, len(ranges)),
		logger:  logger,
	}
	for i, r := range ranges {
		m.workers[i] = newWorker(r, fn)
	}

	if len(m.workers) > 1 {
		m.startPool()
	}

	logger.Debug("subtask manager started", "workers", len(m.workers), "coordinates", n)
	return m, nil
}

func (m *SubtaskManager) startPool() {
	m.barrier = barrier.New(len(m.workers), m.tallyMoves)
	m.poolCtx, m.cancel = context.WithCancel(context.Background())
	m.tasks = make([]chan task, len(m.workers))

	var g errgroup.Group
	for i, w := range m.workers {
		ch := make(chan task, 1)
		m.tasks[i] = ch
		g.Go(func() error {
			for t := range ch {
				w.execute(t, m.barrier)
			}
			return nil
		})
	}
	m.group = &g
}

// tallyMoves runs as the barrier action, after every worker finished the step.
func (m *SubtaskManager) tallyMoves() {
	total := 0
	for _, w := range m.workers {
		total += w.moves
	}
	m.moves = total
}

// Workers returns the number of workers.
func (m *SubtaskManager) Workers() int { return len(m.workers) }

// NumberOfMoves returns the total moves of the last completed step.
func (m *SubtaskManager) NumberOfMoves() int { return m.moves }

// Do runs step on all workers and blocks until every worker has finished or
// the step failed. A failure is returned as a *StepError; in multi-worker
// mode it wraps barrier.ErrBroken together with the cause.
func (m *SubtaskManager) Do(ctx context.Context, step Step, s *shared) error {
	if m.closed.Load() {
		return &StepError{Step: step, Err: ErrPoolClosed}
	}
	if err := ctx.Err(); err != nil {
		return &StepError{Step: step, Err: err}
	}

	stepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := task{ctx: stepCtx, step: step, s: s}

	if m.barrier == nil {
		w := m.workers[0]
		if err := w.safeRun(t); err != nil {
			return &StepError{Step: step, Err: err}
		}
		m.moves = w.moves
		return nil
	}

	// Forced shutdown aborts an in-flight step.
	stop := context.AfterFunc(m.poolCtx, cancel)
	defer stop()

	m.barrier.Reset()
	gen := m.barrier.Current()

dispatch:
	for _, ch := range m.tasks {
		select {
		case ch <- t:
		case <-gen.Done():
			break dispatch
		case <-ctx.Done():
			m.barrier.Break(ctx.Err())
			break dispatch
		}
	}

	select {
	case <-gen.Done():
	case <-ctx.Done():
		m.barrier.Break(ctx.Err())
		<-gen.Done()
	}

	if err := gen.Err(); err != nil {
		return &StepError{Step: step, Err: err}
	}
	return nil
}

// Shutdown stops the worker goroutines. It waits up to grace for them to
// drain, then cancels any in-flight step and waits up to grace again.
// ErrShutdownTimeout is returned if the pool still has not terminated.
// Shutdown is idempotent.
func (m *SubtaskManager) Shutdown(grace time.Duration) error {
	m.shutdownOnce.Do(func() {
		m.closed.Store(true)
		if m.group == nil {
			return
		}

		for _, ch := range m.tasks {
			close(ch)
		}

		done := make(chan struct{})
		go func() {
			_ = m.group.Wait()
			close(done)
		}()

		timer := time.NewTimer(grace)
		defer timer.Stop()

		select {
		case <-done:
			m.cancel()
			m.logger.Debug("subtask manager stopped")
			return
		case <-timer.C:
		}

		m.logger.Warn("worker pool did not drain, cancelling", "grace", grace)
		m.cancel()

		timer.Reset(grace)
		select {
		case <-done:
		case <-timer.C:
			m.shutdownErr = fmt.Errorf("%w after %s", ErrShutdownTimeout, 2*grace)
			m.logger.Error("worker pool did not terminate", "grace", grace)
		}
	})
	return m.shutdownErr
}
