package kmeans

import (
	"context"
	"math"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rkmeans/internal/quickselect"
)

const initialCapacity = 10

var nan = float32(math.NaN())

// ProtoCluster is a cluster under construction. Add is safe for concurrent
// use; every other method must be called by the coordinator between steps.
type ProtoCluster struct {
	center []float32

	mu      sync.Mutex
	current []int

	previous    []int
	needsUpdate bool
	active      bool
}

// NewProtoCluster returns an active cluster centered on a copy of center
// whose only member is index.
func NewProtoCluster(center []float32, index int) *ProtoCluster {
	p := &ProtoCluster{
		center:      slices.Clone(center),
		current:     make([]int, 0, initialCapacity),
		needsUpdate: true,
		active:      true,
	}
	p.Add(index)
	return p
}

// Add appends a member. The buffer doubles when full.
func (p *ProtoCluster) Add(index int) {
	p.mu.Lock()
	if len(p.current) == cap(p.current) {
		grown := make([]int, len(p.current), max(initialCapacity, 2*cap(p.current)))
		copy(grown, p.current)
		p.current = grown
	}
	p.current = append(p.current, index)
	p.mu.Unlock()
}

// SetUpdateFlag sorts the current membership and marks the cluster for a
// center update iff it differs from the checkpointed membership.
func (p *ProtoCluster) SetUpdateFlag() {
	slices.Sort(p.current)
	p.needsUpdate = !slices.Equal(p.previous, p.current)
}

// Checkpoint moves the current membership to previous and starts an empty one.
// The current membership is expected to be sorted (see SetUpdateFlag).
func (p *ProtoCluster) Checkpoint() {
	p.previous = p.current
	p.current = make([]int, 0, max(initialCapacity, len(p.previous)))
}

// Active reports whether the cluster still takes part in the iteration.
func (p *ProtoCluster) Active() bool { return p.active }

// SetActive activates or deactivates the cluster.
func (p *ProtoCluster) SetActive(active bool) { p.active = active }

// NeedsUpdate reports whether the membership changed in the last pass.
func (p *ProtoCluster) NeedsUpdate() bool { return p.needsUpdate }

// Center returns the live center. Callers must not modify it.
func (p *ProtoCluster) Center() []float32 { return p.center }

// Members returns a trimmed copy of the current membership.
func (p *ProtoCluster) Members() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.current)
}

// Size returns the number of current members.
func (p *ProtoCluster) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.current)
}

// UpdateCenter recomputes the center from the current membership. An empty
// cluster keeps its center. A dimension in which no member has a value
// becomes NaN.
func (p *ProtoCluster) UpdateCenter(ctx context.Context, coords [][]float32, variant Variant, medianSkip, threads int) error {
	if len(p.current) == 0 {
		return nil
	}
	if variant == Medians {
		return p.updateMedians(ctx, coords, max(medianSkip, 1), max(threads, 1))
	}
	p.updateMeans(coords)
	return nil
}

func (p *ProtoCluster) updateMeans(coords [][]float32) {
	sums := make([]float64, len(p.center))
	counts := make([]int, len(p.center))
	for _, idx := range p.current {
		for j, v := range coords[idx] {
			if v != v {
				continue
			}
			sums[j] += float64(v)
			counts[j]++
		}
	}
	for j := range p.center {
		if counts[j] == 0 {
			p.center[j] = nan
			continue
		}
		p.center[j] = float32(sums[j] / float64(counts[j]))
	}
}

// updateMedians computes one median per dimension, dimensions in parallel.
// Each goroutine writes a distinct element of the center.
func (p *ProtoCluster) updateMedians(ctx context.Context, coords [][]float32, skip, threads int) error {
	members := p.current
	sampled := (len(members) + skip - 1) / skip

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for j := range p.center {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			values := make([]float32, 0, sampled)
			for i := 0; i < len(members); i += skip {
				if v := coords[members[i]][j]; v == v {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				p.center[j] = nan
				return nil
			}
			p.center[j] = quickselect.Median(values)
			return nil
		})
	}
	return g.Wait()
}
