package s3

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rkmeans/blobstore"
)

// TestIntegration_S3Store reads an existing object. It needs S3_BUCKET and
// S3_KEY pointing at a readable object and AWS credentials in the environment.
func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	key := os.Getenv("S3_KEY")
	if bucket == "" || key == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET or S3_KEY not set")
	}

	ctx := context.Background()
	store, err := New(ctx, bucket, WithRegion(os.Getenv("AWS_REGION")))
	require.NoError(t, err)

	t.Run("Read", func(t *testing.T) {
		blob, err := store.Open(ctx, key)
		require.NoError(t, err)
		defer blob.Close()

		r, err := blobstore.NewReader(ctx, blob)
		require.NoError(t, err)
		defer r.Close()

		data, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, blob.Size(), int64(len(data)))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "rkmeans-nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
