package kmeans

import (
	"context"
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rkmeans/distance"
	"github.com/hupe1980/rkmeans/model"
	"github.com/hupe1980/rkmeans/resource"
	"github.com/hupe1980/rkmeans/testutil"
)

type recorder struct {
	messages    []string
	steps       []Step
	stepErrs    []error
	iterations  []int
	moves       []int
	onIteration func(iteration int)
}

func (r *recorder) Message(msg string) { r.messages = append(r.messages, msg) }

func (r *recorder) StepDone(step Step, _ int, _ time.Duration, err error) {
	r.steps = append(r.steps, step)
	if err != nil {
		r.stepErrs = append(r.stepErrs, err)
	}
}

func (r *recorder) IterationDone(iteration, moves, _ int) {
	r.iterations = append(r.iterations, iteration)
	r.moves = append(r.moves, moves)
	if r.onIteration != nil {
		r.onIteration(iteration)
	}
}

func sortedMembers(clusters []model.Cluster) [][]int {
	out := make([][]int, len(clusters))
	for i, c := range clusters {
		m := c.Members()
		slices.Sort(m)
		out[i] = m
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

func TestCoordinator_TwoGroups(t *testing.T) {
	coords := [][]float32{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}
	want := [][]int{{0, 1, 2}, {3, 4, 5}}

	for _, variant := range []Variant{Means, Medians} {
		for _, threads := range []int{1, 4} {
			for seed := int64(1); seed <= 5; seed++ {
				t.Run(fmt.Sprintf("%s/threads=%d/seed=%d", variant, threads, seed), func(t *testing.T) {
					c, err := NewCoordinator(coords, Config{
						K:             2,
						MaxIterations: 100,
						Seed:          seed,
						Variant:       variant,
						Threads:       threads,
					})
					require.NoError(t, err)

					res, err := c.Run(context.Background())
					require.NoError(t, err)

					assert.Equal(t, model.Converged, res.Outcome)
					assert.Equal(t, want, sortedMembers(res.Clusters))
					assert.Equal(t, StateDone, c.State())
				})
			}
		}
	}
}

func TestCoordinator_ThreadCountDoesNotChangeResult(t *testing.T) {
	rng := testutil.NewRNG(4711)
	coords, _ := rng.Blobs(4, 250, 6, 2.0)
	rng.InjectMissing(coords, 0.1)

	for _, variant := range []Variant{Means, Medians} {
		t.Run(variant.String(), func(t *testing.T) {
			run := func(threads int) *Result {
				c, err := NewCoordinator(coords, Config{
					K:             6,
					MaxIterations: 50,
					Seed:          42,
					Variant:       variant,
					MedianSkip:    2,
					Threads:       threads,
				})
				require.NoError(t, err)
				res, err := c.Run(context.Background())
				require.NoError(t, err)
				return res
			}

			single := run(1)
			multi := run(7)

			assert.Equal(t, single.Outcome, multi.Outcome)
			assert.Equal(t, single.Iterations, multi.Iterations)
			assert.Equal(t, sortedMembers(single.Clusters), sortedMembers(multi.Clusters))
		})
	}
}

func TestCoordinator_MissingDimension(t *testing.T) {
	nan := float32(math.NaN())
	coords := [][]float32{{nan, 1}, {nan, 3}}

	c, err := NewCoordinator(coords, Config{K: 1, MaxIterations: 10, Seed: 1})
	require.NoError(t, err)

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)

	center := res.Clusters[0].Center()
	assert.True(t, math.IsNaN(float64(center[0])))
	assert.InDelta(t, 2.0, center[1], 1e-6)
	assert.Equal(t, model.Converged, res.Outcome)
	assert.Equal(t, 2, res.Iterations)
}

func TestCoordinator_PartiallyMissingCoordinates(t *testing.T) {
	nan := float32(math.NaN())
	coords := [][]float32{
		{0, 0, 0}, {1, 0, 1}, {0, 1, 0}, {0.5, nan, 0.5},
		{10, 10, 10}, {11, 10, 11}, {10, 11, 10}, {nan, 10, 11},
	}
	want := [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}

	for _, variant := range []Variant{Means, Medians} {
		for _, threads := range []int{1, 3} {
			for seed := int64(1); seed <= 5; seed++ {
				t.Run(fmt.Sprintf("%s/threads=%d/seed=%d", variant, threads, seed), func(t *testing.T) {
					c, err := NewCoordinator(coords, Config{
						K:             2,
						MaxIterations: 100,
						Seed:          seed,
						Variant:       variant,
						Threads:       threads,
					})
					require.NoError(t, err)

					res, err := c.Run(context.Background())
					require.NoError(t, err)
					assert.Equal(t, model.Converged, res.Outcome)
					require.Equal(t, want, sortedMembers(res.Clusters))

					for _, cl := range res.Clusters {
						for _, v := range cl.Center() {
							assert.False(t, math.IsNaN(float64(v)))
						}
					}
				})
			}
		}
	}
}

func TestCoordinator_EmptyClusterIsDeactivated(t *testing.T) {
	coords := [][]float32{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	rec := &recorder{}

	c, err := NewCoordinator(coords, Config{K: 3, MaxIterations: 10, Seed: 1, Threads: 2, Observer: rec})
	require.NoError(t, err)

	res, err := c.Run(context.Background())
	require.NoError(t, err)

	// Identical distances: the lowest cluster index wins every tie.
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, 4, res.Clusters[0].Size())
	assert.Len(t, rec.messages, 2)
	assert.Equal(t, model.Converged, res.Outcome)
}

func TestCoordinator_Iterations(t *testing.T) {
	rng := testutil.NewRNG(1)
	coords := rng.UniformVectors(200, 3)

	t.Run("Zero", func(t *testing.T) {
		c, err := NewCoordinator(coords, Config{K: 4, MaxIterations: 0, Seed: 1})
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.MaxIterationsReached, res.Outcome)
		assert.Equal(t, 0, res.Iterations)
		require.Len(t, res.Clusters, 4)
		for _, cl := range res.Clusters {
			assert.Equal(t, 1, cl.Size())
			assert.Equal(t, coords[cl.Members()[0]], cl.Center())
		}
	})

	t.Run("Budget", func(t *testing.T) {
		rec := &recorder{}
		c, err := NewCoordinator(coords, Config{K: 4, MaxIterations: 1, Seed: 1, Observer: rec})
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.MaxIterationsReached, res.Outcome)
		assert.Equal(t, 1, res.Iterations)
		assert.NoError(t, model.VerifyPartition(res.Clusters, len(coords)))

		// the first pass moves every coordinate
		assert.Equal(t, []int{len(coords)}, rec.moves)
		assert.Equal(t, []Step{StepComputeDistances, StepMakeAssignments}, rec.steps)
	})

	t.Run("FixedPoint", func(t *testing.T) {
		rec := &recorder{}
		c, err := NewCoordinator(coords, Config{K: 4, MaxIterations: 1000, Seed: 1, Threads: 3, Observer: rec})
		require.NoError(t, err)

		res, err := c.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.Converged, res.Outcome)
		assert.Equal(t, 0, rec.moves[len(rec.moves)-1])
		assert.Equal(t, rec.iterations[len(rec.iterations)-1], res.Iterations)

		// Another assignment pass against the final centers changes nothing.
		for _, threads := range []int{1, 3} {
			moves, members := reassign(t, coords, res.Clusters, distance.Euclidean, threads)
			assert.Equal(t, 0, moves, "threads=%d", threads)
			for i, cl := range res.Clusters {
				assert.ElementsMatch(t, cl.Members(), members[i], "threads=%d cluster %d", threads, i)
			}
		}
	})
}

// reassign runs one distance and assignment pass over coords with the
// centers and memberships of clusters, and returns the moves and the new
// memberships.
func reassign(t *testing.T, coords [][]float32, clusters []model.Cluster, fn distance.Func, threads int) (int, [][]int) {
	t.Helper()

	s := &shared{
		coords:   coords,
		clusters: make([]*ProtoCluster, len(clusters)),
		dist:     make([]float32, len(coords)*len(clusters)),
		assign:   make([]int32, len(coords)),
		k:        len(clusters),
	}
	for i, cl := range clusters {
		members := cl.Members()
		s.clusters[i] = NewProtoCluster(cl.Center(), members[0])
		s.clusters[i].Checkpoint()
		for _, m := range members {
			s.assign[m] = int32(i)
		}
	}

	mgr, err := NewSubtaskManager(len(coords), threads, fn, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, mgr.Shutdown(time.Second)) }()

	ctx := context.Background()
	require.NoError(t, mgr.Do(ctx, StepComputeDistances, s))
	require.NoError(t, mgr.Do(ctx, StepMakeAssignments, s))

	out := make([][]int, len(s.clusters))
	for i, pc := range s.clusters {
		out[i] = pc.Members()
	}
	return mgr.NumberOfMoves(), out
}

func TestCoordinator_Cancel(t *testing.T) {
	rng := testutil.NewRNG(2)
	coords := rng.UniformVectors(500, 4)

	t.Run("BeforeRun", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c, err := NewCoordinator(coords, Config{K: 5, MaxIterations: 10, Threads: 2})
		require.NoError(t, err)

		_, err = c.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateDone, c.State())
	})

	t.Run("BetweenIterations", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		rec := &recorder{onIteration: func(int) { cancel() }}
		c, err := NewCoordinator(coords, Config{K: 5, MaxIterations: 10, Threads: 2, Observer: rec})
		require.NoError(t, err)

		res, err := c.Run(ctx)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []int{1}, rec.iterations)
	})
}

func TestCoordinator_InsufficientMemory(t *testing.T) {
	coords := testutil.NewRNG(3).UniformVectors(100, 4)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})

	c, err := NewCoordinator(coords, Config{K: 3, MaxIterations: 10, Resources: rc})
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	assert.ErrorIs(t, err, ErrInsufficientMemory)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestCoordinator_ReleasesMemory(t *testing.T) {
	coords := testutil.NewRNG(3).UniformVectors(100, 4)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})

	c, err := NewCoordinator(coords, Config{K: 3, MaxIterations: 10, Resources: rc})
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestCoordinator_RunOnce(t *testing.T) {
	coords := [][]float32{{0}, {1}}
	c, err := NewCoordinator(coords, Config{K: 1, MaxIterations: 5})
	require.NoError(t, err)
	assert.Equal(t, StateInitializing, c.State())

	_, err = c.Run(context.Background())
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestNewCoordinator_Invalid(t *testing.T) {
	coords := [][]float32{{0, 0}, {1, 1}, {2, 2}}

	tests := []struct {
		name   string
		coords [][]float32
		cfg    Config
		want   error
	}{
		{"Empty", nil, Config{K: 1}, ErrEmptyInput},
		{"ZeroK", coords, Config{K: 0}, ErrInvalidK},
		{"KTooLarge", coords, Config{K: 4}, ErrInvalidK},
		{"NegativeIterations", coords, Config{K: 1, MaxIterations: -1}, ErrInvalidIterations},
		{"NegativeThreads", coords, Config{K: 1, Threads: -2}, ErrInvalidThreads},
		{"UnknownVariant", coords, Config{K: 1, Variant: Variant(9)}, ErrInvalidVariant},
		{"NegativeSkip", coords, Config{K: 1, MedianSkip: -1}, ErrInvalidMedianSkip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinator(tt.coords, tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := NewCoordinator([][]float32{{0, 0}, {1}}, Config{K: 1})
		var de *DimensionError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 1, de.Index)
		assert.Equal(t, 2, de.Expected)
		assert.Equal(t, 1, de.Actual)
	})

	t.Run("ZeroDimension", func(t *testing.T) {
		_, err := NewCoordinator([][]float32{{}}, Config{K: 1})
		var de *DimensionError
		require.ErrorAs(t, err, &de)
	})
}

func TestVariant(t *testing.T) {
	assert.Equal(t, "k-means", Means.String())
	assert.Equal(t, "k-medians", Medians.String())
	assert.Equal(t, "L2", Means.Metric().String())
	assert.Equal(t, "L1", Medians.Metric().String())
	assert.Equal(t, "make_assignments", StepMakeAssignments.String())
	assert.Equal(t, "max_iterations_reached", StateMaxIterationsReached.String())
}
