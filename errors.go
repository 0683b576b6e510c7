package rkmeans

import (
	"errors"
	"fmt"

	"github.com/hupe1980/rkmeans/internal/kmeans"
)

var (
	// ErrInvalidK is returned when k is not in [1, number of coordinates].
	ErrInvalidK = errors.New("k must be between 1 and the number of coordinates")

	// ErrInvalidIterations is returned for a negative iteration budget.
	ErrInvalidIterations = errors.New("max iterations must not be negative")

	// ErrInvalidThreads is returned when the thread count is not positive.
	ErrInvalidThreads = errors.New("number of threads must be positive")

	// ErrInvalidVariant is returned for an unknown variant or a negative median skip.
	ErrInvalidVariant = errors.New("invalid clustering variant")

	// ErrEmptyInput is returned when there are no coordinates.
	ErrEmptyInput = errors.New("no coordinates to cluster")

	// ErrAlreadyRun is returned when Run is called more than once.
	ErrAlreadyRun = errors.New("clusterer already run")

	// ErrInsufficientMemory is returned when the working set of a run does
	// not fit the configured limit or the free memory of the system.
	ErrInsufficientMemory = errors.New("insufficient memory")

	// ErrNotRun is returned by Clusters before a successful run.
	ErrNotRun = errors.New("clusterer has not completed a run")
)

// ErrDimensionMismatch indicates a coordinate whose dimensionality differs
// from the first coordinate.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Index    int
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("coordinate %d: dimension mismatch: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrStepFailed indicates a parallel step that did not complete, either
// because a worker failed or because the run was cancelled mid-step.
//
// The cause can be accessed via errors.Unwrap.
type ErrStepFailed struct {
	Step      Step
	Iteration int
	cause     error
}

func (e *ErrStepFailed) Error() string {
	return fmt.Sprintf("step %s failed in iteration %d: %v", e.Step, e.Iteration, e.cause)
}

func (e *ErrStepFailed) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *kmeans.DimensionError
	if errors.As(err, &de) {
		return &ErrDimensionMismatch{Index: de.Index, Expected: de.Expected, Actual: de.Actual, cause: err}
	}
	var se *kmeans.StepError
	if errors.As(err, &se) {
		return &ErrStepFailed{Step: se.Step, Iteration: se.Iteration, cause: se.Err}
	}

	switch {
	case errors.Is(err, kmeans.ErrInvalidK):
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	case errors.Is(err, kmeans.ErrInvalidIterations):
		return fmt.Errorf("%w: %w", ErrInvalidIterations, err)
	case errors.Is(err, kmeans.ErrInvalidThreads):
		return fmt.Errorf("%w: %w", ErrInvalidThreads, err)
	case errors.Is(err, kmeans.ErrInvalidVariant), errors.Is(err, kmeans.ErrInvalidMedianSkip):
		return fmt.Errorf("%w: %w", ErrInvalidVariant, err)
	case errors.Is(err, kmeans.ErrEmptyInput):
		return fmt.Errorf("%w: %w", ErrEmptyInput, err)
	case errors.Is(err, kmeans.ErrAlreadyRun):
		return fmt.Errorf("%w: %w", ErrAlreadyRun, err)
	case errors.Is(err, kmeans.ErrInsufficientMemory):
		return fmt.Errorf("%w: %w", ErrInsufficientMemory, err)
	}

	return err
}
