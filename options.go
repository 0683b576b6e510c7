package rkmeans

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/rkmeans/distance"
	"github.com/hupe1980/rkmeans/internal/kmeans"
	"github.com/hupe1980/rkmeans/resource"
)

type options struct {
	variant          Variant
	medianSkip       int
	maxIterations    int
	seed             int64
	threads          int
	distance         distance.Func // nil uses the variant's metric
	shutdownGrace    time.Duration
	progressInterval time.Duration
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Controller
}

// Option configures a Clusterer.
type Option func(*options)

// WithVariant selects k-means or k-medians.
func WithVariant(v Variant) Option {
	return func(o *options) {
		o.variant = v
	}
}

// WithMedians selects k-medians. Medians are computed over every skip-th
// member of a cluster; skip values below 2 use every member.
//
// Sampling trades accuracy for speed on very large clusters.
func WithMedians(skip int) Option {
	return func(o *options) {
		o.variant = Medians
		o.medianSkip = skip
	}
}

// WithMaxIterations bounds the number of assignment passes.
// Zero returns the seed clusters without iterating.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithSeed sets the seed used to pick the initial centers.
// Runs with the same seed and input produce the same clusters regardless of
// the thread count.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithThreads sets the number of workers. 0 selects runtime.GOMAXPROCS(0),
// a negative count makes New fail with ErrInvalidThreads. More workers than
// coordinates are reduced to one per coordinate.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// WithShutdownGrace sets how long the worker pool may take to stop, once
// before and once after forced cancellation.
func WithShutdownGrace(d time.Duration) Option {
	return func(o *options) {
		o.shutdownGrace = d
	}
}

// WithProgressInterval throttles the informational listener messages.
// Zero forwards every message.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
//
// Example:
//
//	logger := rkmeans.NewJSONLogger(slog.LevelInfo)
//	c, _ := rkmeans.New(coords, 8, rkmeans.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares memory and run limits between Clusterers.
// Without a controller the working set is checked against the free memory
// reported by the operating system.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func defaultOptions() options {
	return options{
		variant:          Means,
		maxIterations:    100,
		seed:             1,
		threads:          runtime.GOMAXPROCS(0),
		shutdownGrace:    kmeans.DefaultShutdownGrace,
		progressInterval: time.Second,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}
