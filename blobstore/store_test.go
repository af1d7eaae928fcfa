package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeSuite exercises the BlobStore contract against any implementation.
func storeSuite(t *testing.T, bs BlobStore) {
	ctx := context.Background()

	t.Run("open missing", func(t *testing.T) {
		_, err := bs.Open(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put open read", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "a/blob-1", []byte("hello blob store")))

		blob, err := bs.Open(ctx, "a/blob-1")
		require.NoError(t, err)
		defer func() { _ = blob.Close() }()

		assert.Equal(t, int64(16), blob.Size())

		data, err := ReadAll(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "hello blob store", string(data))
	})

	t.Run("read at", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "a/blob-2", []byte("0123456789")))

		blob, err := bs.Open(ctx, "a/blob-2")
		require.NoError(t, err)
		defer func() { _ = blob.Close() }()

		p := make([]byte, 4)
		n, err := blob.ReadAt(ctx, p, 3)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, "3456", string(p))

		// Reading past the end yields the tail and EOF.
		n, err = blob.ReadAt(ctx, p, 8)
		assert.Equal(t, 2, n)
		assert.Equal(t, io.EOF, err)

		_, err = blob.ReadAt(ctx, p, 100)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("read range", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "a/blob-3", []byte("0123456789")))

		blob, err := bs.Open(ctx, "a/blob-3")
		require.NoError(t, err)
		defer func() { _ = blob.Close() }()

		rc, err := blob.ReadRange(ctx, 2, 5)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "23456", string(data))

		// Range clamped to blob size.
		rc, err = blob.ReadRange(ctx, 8, 100)
		require.NoError(t, err)
		data, err = io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "89", string(data))
	})

	t.Run("create visible on close", func(t *testing.T) {
		wb, err := bs.Create(ctx, "a/blob-4")
		require.NoError(t, err)

		_, err = wb.Write([]byte("partial "))
		require.NoError(t, err)

		// Not visible until the handle is closed.
		_, err = bs.Open(ctx, "a/blob-4")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = wb.Write([]byte("then complete"))
		require.NoError(t, err)
		require.NoError(t, wb.Sync())
		require.NoError(t, wb.Close())

		blob, err := bs.Open(ctx, "a/blob-4")
		require.NoError(t, err)
		defer func() { _ = blob.Close() }()

		data, err := ReadAll(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "partial then complete", string(data))
	})

	t.Run("list", func(t *testing.T) {
		names, err := bs.List(ctx, "a/")
		require.NoError(t, err)
		assert.Equal(t, []string{"a/blob-1", "a/blob-2", "a/blob-3", "a/blob-4"}, names)

		names, err = bs.List(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "a/blob-del", []byte("x")))
		require.NoError(t, bs.Delete(ctx, "a/blob-del"))

		_, err := bs.Open(ctx, "a/blob-del")
		require.ErrorIs(t, err, ErrNotFound)

		// Deleting a missing blob is not an error.
		require.NoError(t, bs.Delete(ctx, "a/blob-del"))
	})

	t.Run("empty blob", func(t *testing.T) {
		require.NoError(t, bs.Put(ctx, "a/empty", nil))

		blob, err := bs.Open(ctx, "a/empty")
		require.NoError(t, err)
		defer func() { _ = blob.Close() }()

		assert.Equal(t, int64(0), blob.Size())
		require.NoError(t, bs.Delete(ctx, "a/empty"))
	})
}

func TestMemoryStore(t *testing.T) {
	storeSuite(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	bs, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	storeSuite(t, bs)
}

func TestMemoryStoreOpenIsolation(t *testing.T) {
	ctx := context.Background()
	bs := NewMemoryStore()

	require.NoError(t, bs.Put(ctx, "blob", []byte("first")))
	blob, err := bs.Open(ctx, "blob")
	require.NoError(t, err)
	defer func() { _ = blob.Close() }()

	// Overwriting after Open must not change the open handle.
	require.NoError(t, bs.Put(ctx, "blob", []byte("second")))

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestLocalStoreMappedReads(t *testing.T) {
	ctx := context.Background()
	bs, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, bs.Put(ctx, "mapped", []byte("mapped contents")))

	blob, err := bs.Open(ctx, "mapped")
	require.NoError(t, err)
	defer func() { _ = blob.Close() }()

	m, ok := blob.(Mappable)
	require.True(t, ok)

	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mapped contents", string(data))
}
