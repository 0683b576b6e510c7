// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the
// official MinIO Go client and also works with other S3-compatible storage
// such as Ceph, SeaweedFS and Garage.
//
// # Basic Usage
//
//	store, err := minioblob.New(minioblob.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "my-bucket", "datasets/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := dataset.Load(ctx, store, "points.csv")
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
