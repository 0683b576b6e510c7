// Package dataset loads coordinate matrices from delimited text.
//
// Every non-comment row becomes one point. Cells holding a missing-value
// token (by default "", "NA", "NaN", "?" and "null") are stored as NaN, which
// the clustering engine treats as an absent dimension.
//
// # Reading
//
//	rows, err := dataset.Read(f, dataset.WithHeader(true))
//
// # Loading from a BlobStore
//
// Load opens a blob and decompresses it according to its name suffix:
//
//	.gz   gzip  (github.com/klauspost/compress/gzip)
//	.zst  zstd  (github.com/klauspost/compress/zstd)
//	.lz4  lz4   (github.com/pierrec/lz4/v4)
//
//	store := blobstore.NewLocalStore("./data")
//	rows, err := dataset.Load(ctx, store, "points.csv.zst")
//
// Reads can be throttled with WithRateLimit, which routes the raw blob bytes
// through a resource.RateLimitedReader.
package dataset
