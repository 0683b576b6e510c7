package distance

import (
	"fmt"
	"math"
)

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricL1
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricL1:
		return "L1"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricL2:
		return Euclidean, nil
	case MetricL1:
		return Manhattan, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}

// Euclidean calculates the root mean squared difference over the dimensions
// where neither a nor b is NaN.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float32) float32 {
	var (
		sum   float64
		count int
	)
	for i := range a {
		x, y := a[i], b[i]
		if x != x || y != y {
			continue
		}
		d := float64(x) - float64(y)
		sum += d * d
		count++
	}
	if count == 0 {
		return 0
	}
	return float32(math.Sqrt(sum / float64(count)))
}

// Manhattan calculates the mean absolute difference over the dimensions
// where neither a nor b is NaN.
// Assumes vectors are the same length (caller's responsibility).
func Manhattan(a, b []float32) float32 {
	var (
		sum   float64
		count int
	)
	for i := range a {
		x, y := a[i], b[i]
		if x != x || y != y {
			continue
		}
		sum += math.Abs(float64(x) - float64(y))
		count++
	}
	if count == 0 {
		return 0
	}
	return float32(sum / float64(count))
}
