package kmeans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hupe1980/rkmeans/distance"
	"github.com/hupe1980/rkmeans/model"
	"github.com/hupe1980/rkmeans/resource"
)

// DefaultShutdownGrace is the grace period used when Config.ShutdownGrace is zero.
const DefaultShutdownGrace = 10 * time.Second

// Config configures a Coordinator.
type Config struct {
	K             int
	MaxIterations int
	Seed          int64
	Variant       Variant

	// MedianSkip is the stride used when sampling members for a median.
	// Values below 2 use every member.
	MedianSkip int

	// Threads is the number of workers. Zero means runtime.GOMAXPROCS(0).
	Threads int

	// Distance replaces the variant's metric when set.
	Distance distance.Func

	ShutdownGrace time.Duration
	Logger        *slog.Logger
	Resources     *resource.Controller
	Observer      Observer
}

// Observer receives progress callbacks from a running Coordinator. All
// callbacks run on the coordinating goroutine.
type Observer interface {
	// Message reports an informational event.
	Message(msg string)
	// StepDone reports a finished parallel step; err is nil on success.
	StepDone(step Step, iteration int, elapsed time.Duration, err error)
	// IterationDone reports a finished assignment pass.
	IterationDone(iteration, moves, active int)
}

type noopObserver struct{}

func (noopObserver) Message(string) {}
func (noopObserver) StepDone(Step, int, time.Duration, error) {}
func (noopObserver) IterationDone(int, int, int) {}

// Result is the outcome of a successful run.
type Result struct {
	Clusters   []model.Cluster
	Outcome    model.Outcome
	Iterations int
}

// Coordinator drives a single clustering run.
type Coordinator struct {
	cfg    Config
	coords [][]float32
	dim    int
	dist   distance.Func
	logger *slog.Logger
	obs    Observer

	state atomic.Int32
	ran   atomic.Bool
}

// NewCoordinator validates coords and cfg. Coordinates are not copied and
// must not be modified while a run is in progress.
func NewCoordinator(coords [][]float32, cfg Config) (*Coordinator, error) {
	if cfg.Threads == 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}

	if len(coords) == 0 {
		return nil, ErrEmptyInput
	}
	if cfg.K < 1 || cfg.K > len(coords) {
		return nil, fmt.Errorf("%w: k=%d, n=%d", ErrInvalidK, cfg.K, len(coords))
	}
	if cfg.MaxIterations < 0 {
		return nil, ErrInvalidIterations
	}
	if cfg.Threads < 0 {
		return nil, ErrInvalidThreads
	}
	if !cfg.Variant.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVariant, cfg.Variant)
	}
	if cfg.MedianSkip < 0 {
		return nil, ErrInvalidMedianSkip
	}

	dim := len(coords[0])
	for i, c := range coords {
		if len(c) != dim || dim == 0 {
			return nil, &DimensionError{Index: i, Expected: max(dim, 1), Actual: len(c)}
		}
	}

	fn := cfg.Distance
	if fn == nil {
		var err error
		if fn, err = distance.Provider(cfg.Variant.Metric()); err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	obs := cfg.Observer
	if obs == nil {
		obs = noopObserver{}
	}

	return &Coordinator{
		cfg:    cfg,
		coords: coords,
		dim:    dim,
		dist:   fn,
		logger: logger,
		obs:    obs,
	}, nil
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State { return State(c.state.Load()) }

func (c *Coordinator) transition(s State) {
	prev := State(c.state.Swap(int32(s)))
	c.logger.Debug("state transition", "from", prev.String(), "to", s.String())
}

// WorkingSetBytes estimates the memory a run allocates: the distance cache,
// the assignment vector and two membership buffers per coordinate.
func (c *Coordinator) WorkingSetBytes() int64 {
	n := int64(len(c.coords))
	k := int64(c.cfg.K)
	return n*k*4 + n*4 + 2*n*8 + k*int64(c.dim)*4
}

// Run executes the clustering. It may be called once.
func (c *Coordinator) Run(ctx context.Context) (*Result, error) {
	if !c.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	res, err := c.run(ctx)
	if err != nil {
		c.transition(StateFailed)
		c.logger.Error("clustering failed", "error", err)
	}
	c.transition(StateDone)
	return res, err
}

func (c *Coordinator) run(ctx context.Context) (*Result, error) {
	n, k := len(c.coords), c.cfg.K

	need := c.WorkingSetBytes()
	release, err := c.cfg.Resources.Reserve(need)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientMemory, err)
	}
	defer release()

	s := &shared{
		coords:   c.coords,
		clusters: c.seed(),
		dist:     make([]float32, n*k),
		assign:   make([]int32, n),
		k:        k,
	}
	for i := range s.assign {
		s.assign[i] = -1
	}

	mgr, err := NewSubtaskManager(n, c.cfg.Threads, c.dist, c.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := mgr.Shutdown(c.cfg.ShutdownGrace); err != nil {
			c.logger.Error("shutdown", "error", err)
		}
	}()

	c.logger.Info("clustering started",
		"variant", c.cfg.Variant.String(),
		"coordinates", n,
		"dimensions", c.dim,
		"k", k,
		"workers", mgr.Workers(),
		"working_set_bytes", need,
	)
	c.transition(StateIterating)

	outcome := model.MaxIterationsReached
	iteration := 0
	for iteration < c.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, pc := range s.clusters {
			if pc.active {
				pc.Checkpoint()
			}
		}

		if err := c.step(ctx, mgr, StepComputeDistances, s, iteration); err != nil {
			return nil, err
		}
		if err := c.step(ctx, mgr, StepMakeAssignments, s, iteration); err != nil {
			return nil, err
		}
		moves := mgr.NumberOfMoves()

		active := 0
		for i, pc := range s.clusters {
			if !pc.active {
				continue
			}
			if pc.Size() == 0 {
				pc.SetActive(false)
				c.logger.Info("cluster became empty, deactivating", "cluster", i, "iteration", iteration)
				c.obs.Message(fmt.Sprintf("cluster %d became empty in iteration %d and was deactivated", i, iteration))
				continue
			}
			pc.SetUpdateFlag()
			active++
		}

		iteration++
		c.logger.Debug("iteration done", "iteration", iteration, "moves", moves, "active", active)
		c.obs.IterationDone(iteration, moves, active)

		if moves == 0 {
			outcome = model.Converged
			break
		}

		if err := c.updateCenters(ctx, s); err != nil {
			return nil, err
		}
	}

	if outcome == model.Converged {
		c.transition(StateConverged)
	} else {
		c.transition(StateMaxIterationsReached)
	}

	clusters := collect(s)
	// Before the first assignment pass only the seeds are members.
	if iteration > 0 {
		if err := model.VerifyPartition(clusters, n); err != nil {
			return nil, err
		}
	}

	c.logger.Info("clustering finished",
		"outcome", outcome.String(),
		"iterations", iteration,
		"clusters", len(clusters),
	)
	return &Result{Clusters: clusters, Outcome: outcome, Iterations: iteration}, nil
}

// seed picks k distinct coordinates as initial centers.
func (c *Coordinator) seed() []*ProtoCluster {
	rng := rand.New(rand.NewSource(c.cfg.Seed))
	perm := rng.Perm(len(c.coords))[:c.cfg.K]

	clusters := make([]*ProtoCluster, len(perm))
	for i, idx := range perm {
		clusters[i] = NewProtoCluster(c.coords[idx], idx)
	}
	return clusters
}

func (c *Coordinator) step(ctx context.Context, mgr *SubtaskManager, step Step, s *shared, iteration int) error {
	start := time.Now()
	err := mgr.Do(ctx, step, s)
	c.obs.StepDone(step, iteration, time.Since(start), err)

	var se *StepError
	if errors.As(err, &se) {
		se.Iteration = iteration
	}
	return err
}

func (c *Coordinator) updateCenters(ctx context.Context, s *shared) error {
	for _, pc := range s.clusters {
		if !pc.active || !pc.needsUpdate {
			continue
		}
		if err := pc.UpdateCenter(ctx, s.coords, c.cfg.Variant, c.cfg.MedianSkip, c.cfg.Threads); err != nil {
			return err
		}
	}
	return nil
}

func collect(s *shared) []model.Cluster {
	clusters := make([]model.Cluster, 0, len(s.clusters))
	for _, pc := range s.clusters {
		if !pc.active {
			continue
		}
		clusters = append(clusters, model.NewCluster(pc.current, pc.center))
	}
	return clusters
}
