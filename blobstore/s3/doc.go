// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	rows, err := dataset.Load(ctx, store, "points.csv.gz")
//
// # Features
//
//   - Range reads for partial fetches
//   - Parallel multi-part downloads for large whole-object reads
//   - Automatic pagination for listing
//   - Custom endpoints (path-style) for S3-compatible services
package s3
