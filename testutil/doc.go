// Package testutil provides testing utilities for rkmeans.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating seeded coordinates, well separated
// blobs with known labels, and for punching missing values (NaN) into data.
//
// # Random Coordinates
//
//	rng := testutil.NewRNG(seed)
//	coords := rng.UniformVectors(1000, 8)   // uniform [0, 1)
//	coords = rng.GaussianVectors(1000, 8)   // standard normal
//
// # Blobs
//
//	coords, labels := rng.Blobs(3, 100, 4, 0.5)
//	rng.InjectMissing(coords, 0.1)
package testutil
