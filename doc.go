// Package rkmeans clusters float32 coordinates with a parallel, deterministic
// Lloyd iteration.
//
// rkmeans partitions a fixed set of N coordinates of dimension D into at most
// k clusters. Two variants are supported:
//
//   - Means: centers are per-dimension means; distances are Euclidean.
//   - Medians: centers are per-dimension medians; distances are Manhattan.
//
// Missing values are encoded as NaN. Distances and center updates ignore them,
// so coordinates with gaps can be clustered without imputation.
//
// # Quick Start
//
//	c, err := rkmeans.New(coords, 8,
//	    rkmeans.WithMaxIterations(50),
//	    rkmeans.WithSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//	res, err := c.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, cl := range res.Clusters {
//	    fmt.Println(cl.Size(), cl.Center())
//	}
//
// # Determinism
//
// The initial centers are drawn from a seeded generator and every parallel
// step writes disjoint ranges, so the clusters depend only on the input, k,
// the variant and the seed. The thread count changes speed, not results.
//
// # Empty Clusters
//
// A cluster that loses all of its members is deactivated and never comes
// back. A run can therefore return fewer than k clusters.
//
// # Listeners
//
// Listeners receive informational messages while a run is in progress and
// exactly one terminal notification:
//
//	c.AddListener(&rkmeans.ListenerFuncs{
//	    Message:  func(msg string) { log.Println(msg) },
//	    Complete: func(cl []rkmeans.Cluster) { log.Println(len(cl), "clusters") },
//	    Error:    func(err error) { log.Println("failed:", err) },
//	})
//
// # Resources
//
// Before allocating, a run estimates its working set and reserves it with a
// resource.Controller (see WithResourceController). Without a controller the
// estimate is compared with the free memory of the system. Runs that do not
// fit fail fast with ErrInsufficientMemory.
//
// # Loading Data
//
// The dataset package parses delimited text (optionally gzip, zstd or lz4
// compressed) from any blobstore.BlobStore: local files, memory, S3 or MinIO.
//
//	rows, err := dataset.Load(ctx, blobstore.NewLocalStore("./data"), "points.csv.zst",
//	    dataset.WithHeader(true))
package rkmeans
