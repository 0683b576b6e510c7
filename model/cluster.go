package model

import (
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Cluster is an immutable clustering result: the indices of the member
// coordinates and the cluster center.
//
// Center entries are NaN for dimensions in which no member had a value.
type Cluster struct {
	members []int
	center  []float32
}

// NewCluster creates a Cluster that owns copies of members and center.
func NewCluster(members []int, center []float32) Cluster {
	return Cluster{
		members: slices.Clone(members),
		center:  slices.Clone(center),
	}
}

// Members returns a copy of the member coordinate indices (unordered).
func (c Cluster) Members() []int {
	return slices.Clone(c.members)
}

// Center returns a copy of the cluster center.
func (c Cluster) Center() []float32 {
	return slices.Clone(c.center)
}

// Size returns the number of members.
func (c Cluster) Size() int {
	return len(c.members)
}

// Dimension returns the length of the center vector.
func (c Cluster) Dimension() int {
	return len(c.center)
}

// Clone returns a deep copy of the cluster.
func (c Cluster) Clone() Cluster {
	return NewCluster(c.members, c.center)
}

// Bitmap returns the members as a roaring bitmap.
func (c Cluster) Bitmap() *roaring.Bitmap {
	rb := roaring.New()
	for _, m := range c.members {
		rb.Add(uint32(m))
	}
	return rb
}

// String returns a short description of the cluster.
func (c Cluster) String() string {
	return fmt.Sprintf("Cluster(size=%d, dim=%d)", len(c.members), len(c.center))
}

// Outcome describes how a successful clustering run terminated.
type Outcome int

const (
	// Converged means the last assignment pass moved no coordinate.
	Converged Outcome = iota
	// MaxIterationsReached means the iteration budget ran out first.
	MaxIterationsReached
)

func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	default:
		return fmt.Sprintf("Unknown(%d)", o)
	}
}
