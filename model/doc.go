// Package model defines the result types produced by a clustering run.
//
// # Result Types
//
//   - Cluster: Immutable snapshot of one cluster (member indices + center)
//   - Outcome: How a successful run terminated (converged or budget exhausted)
//
// Clusters are detached from the run that produced them: every accessor
// returns a copy, so callers may keep them as long as they like.
//
// # Helpers
//
//	err := model.VerifyPartition(clusters, n) // disjoint, covers [0, n)
//	idx := model.Nearest(point, clusters, distance.Euclidean)
package model
