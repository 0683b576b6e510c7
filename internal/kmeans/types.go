package kmeans

import (
	"fmt"

	"github.com/hupe1980/rkmeans/distance"
)

// Variant selects how cluster centers are computed.
type Variant int

const (
	// Means recomputes centers as per-dimension means and compares with the L2 metric.
	Means Variant = iota
	// Medians recomputes centers as per-dimension medians and compares with the L1 metric.
	Medians
)

func (v Variant) String() string {
	switch v {
	case Means:
		return "k-means"
	case Medians:
		return "k-medians"
	default:
		return fmt.Sprintf("Unknown(%d)", v)
	}
}

// Metric returns the distance metric paired with the variant.
func (v Variant) Metric() distance.Metric {
	if v == Medians {
		return distance.MetricL1
	}
	return distance.MetricL2
}

func (v Variant) valid() bool {
	return v == Means || v == Medians
}

// Step identifies one of the two parallel steps of an iteration.
type Step int

const (
	StepComputeDistances Step = iota
	StepMakeAssignments
)

func (s Step) String() string {
	switch s {
	case StepComputeDistances:
		return "compute_distances"
	case StepMakeAssignments:
		return "make_assignments"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// State is the lifecycle state of a Coordinator.
type State int32

const (
	StateInitializing State = iota
	StateIterating
	StateConverged
	StateMaxIterationsReached
	StateFailed
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterationsReached:
		return "max_iterations_reached"
	case StateFailed:
		return "failed"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// shared is the state of one run that workers read and write during a step.
// The controller only mutates it between steps.
type shared struct {
	coords   [][]float32
	clusters []*ProtoCluster
	dist     []float32 // len(coords)*k, row-major by coordinate
	assign   []int32   // -1 until first assigned
	k        int
}
