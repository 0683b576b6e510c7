package rkmeans

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/rkmeans/distance"
	"github.com/hupe1980/rkmeans/internal/kmeans"
	"github.com/hupe1980/rkmeans/model"
)

// Variant selects how cluster centers are computed.
type Variant = kmeans.Variant

const (
	// Means uses per-dimension means and the Euclidean metric.
	Means = kmeans.Means
	// Medians uses per-dimension medians and the Manhattan metric.
	Medians = kmeans.Medians
)

// Step identifies one of the parallel steps of an iteration.
type Step = kmeans.Step

const (
	StepComputeDistances = kmeans.StepComputeDistances
	StepMakeAssignments  = kmeans.StepMakeAssignments
)

// State is the lifecycle state of a Clusterer.
type State = kmeans.State

const (
	StateInitializing         = kmeans.StateInitializing
	StateIterating            = kmeans.StateIterating
	StateConverged            = kmeans.StateConverged
	StateMaxIterationsReached = kmeans.StateMaxIterationsReached
	StateFailed               = kmeans.StateFailed
	StateDone                 = kmeans.StateDone
)

// Cluster is an immutable clustering result.
type Cluster = model.Cluster

// Outcome tells why a run stopped.
type Outcome = model.Outcome

const (
	Converged            = model.Converged
	MaxIterationsReached = model.MaxIterationsReached
)

// Listener receives notifications about a run. Each run delivers exactly
// one of OnComplete or OnError.
type Listener interface {
	OnMessage(msg string)
	OnComplete(clusters []Cluster)
	OnError(err error)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Message  func(msg string)
	Complete func(clusters []Cluster)
	Error    func(err error)
}

func (f *ListenerFuncs) OnMessage(msg string) {
	if f.Message != nil {
		f.Message(msg)
	}
}

func (f *ListenerFuncs) OnComplete(clusters []Cluster) {
	if f.Complete != nil {
		f.Complete(clusters)
	}
}

func (f *ListenerFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// Result is the outcome of a successful run.
type Result struct {
	Clusters   []Cluster
	Outcome    Outcome
	Iterations int
	Elapsed    time.Duration

	dist distance.Func
}

// Predict returns the index in Clusters of the cluster whose center is
// nearest to point under the run's metric, or -1 if there are no clusters.
func (r *Result) Predict(point []float32) int {
	return model.Nearest(point, r.Clusters, r.dist)
}

// Clusterer partitions a fixed set of coordinates into at most k clusters.
// A Clusterer runs once.
type Clusterer struct {
	opts   options
	logger *Logger
	coord  *kmeans.Coordinator
	dist   distance.Func
	obs    *observer

	started atomic.Bool

	mu        sync.Mutex
	listeners []Listener
	result    *Result
}

// New validates the input and returns a Clusterer. The coordinates are not
// copied and must not be modified until Run returns. NaN marks a missing value.
func New(coordinates [][]float32, k int, optFns ...Option) (*Clusterer, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.threads < 0 {
		return nil, ErrInvalidThreads
	}

	logger := opts.logger.WithK(k).WithVariant(opts.variant)
	if len(coordinates) > 0 {
		logger = logger.WithDimension(len(coordinates[0])).WithCount(len(coordinates))
	}

	c := &Clusterer{
		opts:   opts,
		logger: logger,
	}
	c.obs = &observer{c: c, ctx: context.Background()}
	if opts.progressInterval > 0 {
		c.obs.progress = &rate.Sometimes{Interval: opts.progressInterval}
	}

	coord, err := kmeans.NewCoordinator(coordinates, kmeans.Config{
		K:             k,
		MaxIterations: opts.maxIterations,
		Seed:          opts.seed,
		Variant:       opts.variant,
		MedianSkip:    opts.medianSkip,
		Threads:       opts.threads,
		Distance:      opts.distance,
		ShutdownGrace: opts.shutdownGrace,
		Logger:        logger.Logger,
		Resources:     opts.resources,
		Observer:      c.obs,
	})
	if err != nil {
		return nil, translateError(err)
	}
	c.coord = coord

	c.dist = opts.distance
	if c.dist == nil {
		if c.dist, err = distance.Provider(opts.variant.Metric()); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// AddListener registers l. It is safe to call during a run; l then
// receives the notifications that follow.
func (c *Clusterer) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters l. Listeners are matched with ==.
func (c *Clusterer) RemoveListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = slices.DeleteFunc(c.listeners, func(x Listener) bool { return x == l })
}

// State returns the current lifecycle state.
func (c *Clusterer) State() State {
	return c.coord.State()
}

// Clusters returns copies of the clusters of a successful run.
func (c *Clusterer) Clusters() ([]Cluster, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, ErrNotRun
	}
	return cloneClusters(c.result.Clusters), nil
}

// Run clusters the coordinates and blocks until the run completes, fails or
// ctx is cancelled. Listeners are notified before Run returns.
func (c *Clusterer) Run(ctx context.Context) (*Result, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	start := time.Now()
	res, err := c.run(ctx)
	elapsed := time.Since(start)

	c.opts.metricsCollector.RecordRun(c.obs.iterations, elapsed, err)
	if err != nil {
		c.logger.LogRun(ctx, nil, err)
		c.notifyError(err)
		return nil, err
	}

	res.Elapsed = elapsed
	c.logger.LogRun(ctx, res, nil)

	c.mu.Lock()
	c.result = res
	c.mu.Unlock()

	c.notifyComplete(res.Clusters)
	return res, nil
}

func (c *Clusterer) run(ctx context.Context) (*Result, error) {
	if err := c.opts.resources.AcquireRun(ctx); err != nil {
		return nil, err
	}
	defer c.opts.resources.ReleaseRun()

	c.obs.ctx = ctx
	res, err := c.coord.Run(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	return &Result{
		Clusters:   res.Clusters,
		Outcome:    res.Outcome,
		Iterations: res.Iterations,
		dist:       c.dist,
	}, nil
}

func (c *Clusterer) snapshot() []Listener {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.listeners)
}

func (c *Clusterer) notifyMessage(msg string) {
	for _, l := range c.snapshot() {
		l.OnMessage(msg)
	}
}

func (c *Clusterer) notifyComplete(clusters []Cluster) {
	for _, l := range c.snapshot() {
		l.OnComplete(cloneClusters(clusters))
	}
}

func (c *Clusterer) notifyError(err error) {
	for _, l := range c.snapshot() {
		l.OnError(err)
	}
}

func cloneClusters(clusters []Cluster) []Cluster {
	out := make([]Cluster, len(clusters))
	for i, cl := range clusters {
		out[i] = cl.Clone()
	}
	return out
}

// observer forwards engine callbacks to the logger, the metrics collector
// and the listeners. It runs on the goroutine calling Run.
type observer struct {
	c          *Clusterer
	ctx        context.Context
	progress   *rate.Sometimes
	iterations int
}

func (o *observer) Message(msg string) {
	o.c.notifyMessage(msg)
}

func (o *observer) StepDone(step Step, iteration int, elapsed time.Duration, err error) {
	o.c.opts.metricsCollector.RecordStep(step.String(), elapsed, err)
	o.c.logger.LogStep(o.ctx, step.String(), iteration, elapsed, err)
}

func (o *observer) IterationDone(iteration, moves, active int) {
	o.iterations = iteration
	o.c.opts.metricsCollector.RecordIteration(moves)
	o.c.logger.LogIteration(o.ctx, iteration, moves, active)

	msg := func() {
		o.c.notifyMessage(fmt.Sprintf("iteration %d: %d moves, %d active clusters", iteration, moves, active))
	}
	if o.progress == nil {
		msg()
		return
	}
	o.progress.Do(msg)
}
