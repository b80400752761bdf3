package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (ObjectStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFSStore(dir, "http://localhost:8080/assets/qr/")
	require.NoError(t, err)
	return store, dir
}

func TestFSStoreWriteExistsDelete(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "abc.png")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Write(ctx, "abc.png", []byte("png-bytes"), "image/png"))

	exists, err = store.Exists(ctx, "abc.png")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	require.NoError(t, store.Delete(ctx, "abc.png"))

	exists, err = store.Exists(ctx, "abc.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFSStoreDeleteMissingIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "never-written.png"))
}

func TestFSStoreOverwriteIsLastWriterWins(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "abc.png", []byte("first"), "image/png"))
	require.NoError(t, store.Write(ctx, "abc.png", []byte("second"), "image/png"))

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestFSStoreURL(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Equal(t, "http://localhost:8080/assets/qr/abc.png", store.URL("abc.png"))
}
