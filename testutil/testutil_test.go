package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestGaussianVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.GaussianVectors(16, 4)

	assert.Equal(t, 16, len(v))
	assert.Equal(t, 4, len(v[0]))
}

func TestBlobs(t *testing.T) {
	rng := NewRNG(4711)

	coords, labels := rng.Blobs(3, 20, 2, 0.1)
	require.Len(t, coords, 60)
	require.Len(t, labels, 60)

	counts := map[int]int{}
	for i, c := range coords {
		counts[labels[i]]++
		assert.InDelta(t, float32(10*labels[i]), c[0], 1.0)
	}
	assert.Equal(t, map[int]int{0: 20, 1: 20, 2: 20}, counts)
}

func TestInjectMissing(t *testing.T) {
	rng := NewRNG(4711)

	coords := rng.UniformVectors(100, 4)
	missing := rng.InjectMissing(coords, 0.5)
	assert.Greater(t, missing, 0)

	nans := 0
	for _, c := range coords {
		kept := 0
		for _, v := range c {
			if v != v {
				nans++
			} else {
				kept++
			}
		}
		assert.GreaterOrEqual(t, kept, 1)
	}
	assert.Equal(t, missing, nans)
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)
	rng.Reset()
	v2 := rng.UniformVectors(1, 10)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}
