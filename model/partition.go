package model

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/rkmeans/distance"
)

// PartitionError reports a violation found by VerifyPartition.
type PartitionError struct {
	// Cluster is the index of the offending cluster, or -1 for coverage errors.
	Cluster int
	Reason  string
}

func (e *PartitionError) Error() string {
	if e.Cluster < 0 {
		return fmt.Sprintf("invalid partition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid partition: cluster %d: %s", e.Cluster, e.Reason)
}

// VerifyPartition checks that clusters split [0, n) into disjoint member
// sets: every index belongs to exactly one cluster.
func VerifyPartition(clusters []Cluster, n int) error {
	seen := roaring.New()
	for i, c := range clusters {
		rb := c.Bitmap()
		if int(rb.GetCardinality()) != len(c.members) {
			return &PartitionError{Cluster: i, Reason: "duplicate member"}
		}
		if !rb.IsEmpty() && rb.Maximum() >= uint32(n) {
			return &PartitionError{Cluster: i, Reason: fmt.Sprintf("member out of range [0, %d)", n)}
		}
		if seen.Intersects(rb) {
			return &PartitionError{Cluster: i, Reason: "member shared with another cluster"}
		}
		seen.Or(rb)
	}

	if got := seen.GetCardinality(); got != uint64(n) {
		return &PartitionError{Cluster: -1, Reason: fmt.Sprintf("%d of %d coordinates assigned", got, n)}
	}
	return nil
}

// Nearest returns the index of the cluster whose center is closest to point
// under fn. The lowest index wins ties. It returns -1 if clusters is empty.
func Nearest(point []float32, clusters []Cluster, fn distance.Func) int {
	nearest := -1
	best := float32(0)
	for i, c := range clusters {
		d := fn(point, c.center)
		if nearest < 0 || d < best {
			nearest = i
			best = d
		}
	}
	return nearest
}
