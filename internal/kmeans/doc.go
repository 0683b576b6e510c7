// Package kmeans implements a parallel Lloyd iteration with k-means and
// k-medians center updates over coordinates that may contain NaN.
//
// A Coordinator owns one run. It seeds k proto-clusters, then alternates two
// parallel steps executed by a SubtaskManager (compute distances, make
// assignments) with single-threaded bookkeeping: empty clusters are
// deactivated, update flags are derived from membership changes, and centers
// of changed clusters are recomputed. The run stops when an assignment pass
// moves no coordinate or the iteration budget is used up.
//
// Workers own disjoint coordinate ranges, so the distance cache and the
// assignment vector need no locking. The only shared mutable structure inside
// a step is a proto-cluster's membership buffer.
package kmeans
