package kmeans

import (
	"context"
	"fmt"

	"github.com/hupe1980/rkmeans/distance"
	"github.com/hupe1980/rkmeans/internal/barrier"
)

// checkEvery is how many coordinates a worker processes between context checks.
const checkEvery = 256

// task is one step dispatched to a worker.
type task struct {
	ctx  context.Context
	step Step
	s    *shared
}

// Worker executes the parallel steps for a contiguous range of coordinates.
type Worker struct {
	start int
	count int
	dist  distance.Func
	moves int
}

func newWorker(r Range, fn distance.Func) *Worker {
	return &Worker{start: r.Start, count: r.Count, dist: fn}
}

// Moves returns the number of reassignments in the last make-assignments step.
func (w *Worker) Moves() int { return w.moves }

// execute runs t and signals b: a failed step breaks the barrier with its
// cause, a successful one awaits it.
func (w *Worker) execute(t task, b *barrier.Barrier) {
	if err := w.safeRun(t); err != nil {
		b.Break(err)
		return
	}
	// A broken generation is observed by the manager.
	_, _ = b.Await()
}

// safeRun runs t, converting a panic into an error.
func (w *Worker) safeRun(t task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker [%d, %d): panic during %s: %v", w.start, w.start+w.count, t.step, r)
		}
	}()
	return w.run(t)
}

func (w *Worker) run(t task) error {
	switch t.step {
	case StepComputeDistances:
		return w.computeDistances(t.ctx, t.s)
	case StepMakeAssignments:
		return w.makeAssignments(t.ctx, t.s)
	default:
		return fmt.Errorf("unknown step %s", t.step)
	}
}

// computeDistances refreshes the cached distances of the worker's rows to
// every active cluster whose center changed.
func (w *Worker) computeDistances(ctx context.Context, s *shared) error {
	end := w.start + w.count
	for i := w.start; i < end; i++ {
		if (i-w.start)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row := s.dist[i*s.k : (i+1)*s.k]
		coord := s.coords[i]
		for c, pc := range s.clusters {
			if pc.active && pc.needsUpdate {
				row[c] = w.dist(coord, pc.center)
			}
		}
	}
	return nil
}

// makeAssignments adds each coordinate of the range to its nearest active
// cluster and counts the coordinates whose cluster changed.
func (w *Worker) makeAssignments(ctx context.Context, s *shared) error {
	w.moves = 0
	end := w.start + w.count
	for i := w.start; i < end; i++ {
		if (i-w.start)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row := s.dist[i*s.k : (i+1)*s.k]
		nearest := -1
		var best float32
		for c, pc := range s.clusters {
			if !pc.active {
				continue
			}
			if nearest < 0 || row[c] < best {
				nearest, best = c, row[c]
			}
		}
		if nearest < 0 {
			return errNoActiveCluster
		}

		s.clusters[nearest].Add(i)
		if s.assign[i] != int32(nearest) {
			s.assign[i] = int32(nearest)
			w.moves++
		}
	}
	return nil
}
