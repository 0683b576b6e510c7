// Package blobstore provides read access to input data wherever it lives.
//
// BlobStore opens named, immutable blobs and lists them by prefix.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory blobs, mostly for tests
//   - s3.Store: Amazon S3 with range reads and parallel whole-object downloads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
// Implement the BlobStore and Blob interfaces to support other backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
//	type Blob interface {
//	    io.Closer
//	    Size() int64
//	    ReadRange(ctx, off, len int64) (io.ReadCloser, error)
//	}
package blobstore
