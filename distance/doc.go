// Package distance provides NaN-aware vector distance calculations.
//
// Missing values are encoded as NaN. A dimension where either operand is NaN
// is skipped and excluded from the normalization, so a single missing entry
// never turns the whole distance into NaN.
//
// # Supported Metrics
//
//   - MetricL2: Robust Euclidean distance (root mean squared difference), used by k-means
//   - MetricL1: Robust Manhattan distance (mean absolute difference), used by k-medians
//
// # Usage
//
//	fn, err := distance.Provider(distance.MetricL1)
//	d := fn(a, b)
//
// Both metrics return 0 when no dimension contributes.
package distance
