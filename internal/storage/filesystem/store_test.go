package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/avdeev/apilab/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the data directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")
		_, err := New(dir)
		require.NoError(t, err)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("get of absent key is ErrNotFound", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)
		_, err = store.Get(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "collections", []byte(`[{"id":"1"}]`)))
		got, err := store.Get(ctx, "collections")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, string(got))
	})

	t.Run("set replaces the previous value", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "k", []byte("old")))
		require.NoError(t, store.Set(ctx, "k", []byte("new")))
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("delete removes the key, absent delete is fine", func(t *testing.T) {
		store, err := New(t.TempDir())
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "k", []byte("v")))
		require.NoError(t, store.Delete(ctx, "k"))
		_, err = store.Get(ctx, "k")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, "k"))
	})

	t.Run("values survive a reopen", func(t *testing.T) {
		dir := t.TempDir()
		store, err := New(dir)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "k", []byte("v")))

		reopened, err := New(dir)
		require.NoError(t, err)
		got, err := reopened.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(got))
	})
}
