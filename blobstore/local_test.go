package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "runs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "points.csv"), []byte("1,2\n3,4\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "runs", "a.csv"), []byte("5,6\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "runs", "empty.csv"), nil, 0o600))

	store := NewLocalStore(root)
	ctx := context.Background()

	t.Run("Open", func(t *testing.T) {
		blob, err := store.Open(ctx, "points.csv")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(8), blob.Size())

		r, err := NewReader(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "1,2\n3,4\n", readAll(t, r))

		r, err = blob.ReadRange(ctx, 4, 100)
		require.NoError(t, err)
		assert.Equal(t, "3,4\n", readAll(t, r))

		r, err = blob.ReadRange(ctx, 100, 1)
		require.NoError(t, err)
		assert.Equal(t, "", readAll(t, r))

		m, ok := blob.(Mappable)
		require.True(t, ok)
		data, err := m.Bytes()
		require.NoError(t, err)
		assert.Equal(t, "1,2\n3,4\n", string(data))
	})

	t.Run("Nested", func(t *testing.T) {
		blob, err := store.Open(ctx, "runs/a.csv")
		require.NoError(t, err)
		defer blob.Close()

		r, err := NewReader(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "5,6\n", readAll(t, r))
	})

	t.Run("Empty", func(t *testing.T) {
		blob, err := store.Open(ctx, "runs/empty.csv")
		require.NoError(t, err)
		defer blob.Close()

		assert.Equal(t, int64(0), blob.Size())
		r, err := NewReader(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "", readAll(t, r))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "missing.csv")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"points.csv", "runs/a.csv", "runs/empty.csv"}, names)

		names, err = store.List(ctx, "runs/")
		require.NoError(t, err)
		assert.Equal(t, []string{"runs/a.csv", "runs/empty.csv"}, names)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Open(cctx, "points.csv")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("7,8\n")
	require.NoError(t, store.Put(ctx, "b.csv", data))
	require.NoError(t, store.Put(ctx, "a.csv", []byte("1,2\n")))
	data[0] = 'x'

	blob, err := store.Open(ctx, "b.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(4), blob.Size())

	r, err := NewReader(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "7,8\n", readAll(t, r))

	r, err = blob.ReadRange(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, "8", readAll(t, r))
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)

	require.NoError(t, store.Delete(ctx, "a.csv"))
	_, err = store.Open(ctx, "a.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}
