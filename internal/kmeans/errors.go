package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when there are no coordinates to cluster.
	ErrEmptyInput = errors.New("no coordinates to cluster")

	// ErrInvalidK is returned when k is not in [1, number of coordinates].
	ErrInvalidK = errors.New("k must be between 1 and the number of coordinates")

	// ErrInvalidIterations is returned for a negative iteration budget.
	ErrInvalidIterations = errors.New("max iterations must not be negative")

	// ErrInvalidThreads is returned when the thread count is not positive.
	ErrInvalidThreads = errors.New("number of threads must be positive")

	// ErrInvalidVariant is returned for an unknown Variant.
	ErrInvalidVariant = errors.New("unknown clustering variant")

	// ErrInvalidMedianSkip is returned for a negative median stride.
	ErrInvalidMedianSkip = errors.New("median skip must not be negative")

	// ErrAlreadyRun is returned when Run is called more than once.
	ErrAlreadyRun = errors.New("clustering already run")

	// ErrInsufficientMemory is returned when the working set cannot be reserved.
	ErrInsufficientMemory = errors.New("insufficient memory")

	// ErrShutdownTimeout is returned when the worker pool does not terminate
	// within the grace period even after cancellation.
	ErrShutdownTimeout = errors.New("worker pool did not terminate")

	// ErrPoolClosed is returned when a step is requested after Shutdown.
	ErrPoolClosed = errors.New("worker pool is shut down")

	errNoActiveCluster = errors.New("no active cluster to assign to")
)

// DimensionError reports a coordinate whose length differs from the first one.
type DimensionError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("coordinate %d: dimension mismatch: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

// StepError reports a parallel step that did not complete.
type StepError struct {
	Step      Step
	Iteration int
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed in iteration %d: %v", e.Step, e.Iteration, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
