package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformVectors generates coordinates with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fill(num, dimensions, func() float32 { return r.rand.Float32() })
}

// GaussianVectors generates coordinates with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return fill(num, dimensions, func() float32 { return float32(r.rand.NormFloat64()) })
}

// Blobs generates perPoint coordinates around each of the given number of
// centers and returns them together with the index of the generating
// center. Centers lie on the axis diagonal 10 units apart, so blobs with a
// spread well below 5 do not overlap.
func (r *RNG) Blobs(centers, perCenter, dimensions int, spread float32) ([][]float32, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coords := fill(centers*perCenter, dimensions, func() float32 {
		return float32(r.rand.NormFloat64()) * spread
	})
	labels := make([]int, len(coords))
	for i, c := range coords {
		label := i / perCenter
		labels[i] = label
		for j := range c {
			c[j] += float32(10 * label)
		}
	}

	r.rand.Shuffle(len(coords), func(i, j int) {
		coords[i], coords[j] = coords[j], coords[i]
		labels[i], labels[j] = labels[j], labels[i]
	})
	return coords, labels
}

// InjectMissing replaces roughly the given fraction of values with NaN.
// Every coordinate keeps at least one value.
func (r *RNG) InjectMissing(coords [][]float32, fraction float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	missing := 0
	nan := float32(math.NaN())
	for _, c := range coords {
		kept := len(c)
		for j := range c {
			if kept > 1 && r.rand.Float64() < fraction {
				c[j] = nan
				kept--
				missing++
			}
		}
	}
	return missing
}

func fill(num, dimensions int, next func() float32) [][]float32 {
	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = next()
		}
		vectors[i] = vec
	}

	return vectors
}
