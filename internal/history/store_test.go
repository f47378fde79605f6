package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/avdeev/apilab/internal/core"
	"github.com/avdeev/apilab/internal/storage"
	"github.com/avdeev/apilab/internal/storage/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	kv, err := filesystem.New(t.TempDir())
	require.NoError(t, err)
	return NewStore(kv)
}

func TestStore_Push(t *testing.T) {
	ctx := context.Background()

	t.Run("most recent entry comes first", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Push(ctx, Entry{ID: "1", Method: core.MethodGet, URL: "/a"}))
		require.NoError(t, store.Push(ctx, Entry{ID: "2", Method: core.MethodGet, URL: "/b"}))

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "/b", entries[0].URL)
		assert.Equal(t, "/a", entries[1].URL)
	})

	t.Run("cap evicts oldest entries", func(t *testing.T) {
		store := newTestStore(t)
		for i := 1; i <= 55; i++ {
			entry := Entry{ID: fmt.Sprintf("%d", i), Method: core.MethodGet, URL: fmt.Sprintf("/r/%d", i)}
			require.NoError(t, store.Push(ctx, entry))
		}

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, MaxEntries)
		assert.Equal(t, "55", entries[0].ID)
		assert.Equal(t, "6", entries[MaxEntries-1].ID)
	})

	t.Run("failed attempts are recorded too", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Push(ctx, Entry{
			ID:     "1",
			Method: core.MethodGet,
			URL:    "http://unreachable.invalid",
			Error:  "connection refused",
		}))

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "connection refused", entries[0].Error)
	})
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields empty history", func(t *testing.T) {
		store := newTestStore(t)
		entries, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("corrupt blob yields empty history without error", func(t *testing.T) {
		kv, err := filesystem.New(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, storage.KeyHistory, []byte("{corrupt")))

		entries, err := NewStore(kv).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.Push(ctx, Entry{ID: "1", Method: core.MethodGet, URL: "/a"}))
	require.NoError(t, store.Clear(ctx))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryDescriptorRoundTrip(t *testing.T) {
	r := core.NewRequestDescriptor(core.MethodPost, "/api/x")
	r.SetHeader("X-Test", "1")
	r.AddQueryParam("a", "1")
	r.Body = `{"a":1}`
	r.Tests = []string{"never serialized"}

	entry := FromDescriptor(r)
	assert.Empty(t, entry.Error)
	assert.False(t, entry.ExecutedAt.IsZero())

	back := entry.ToDescriptor()
	assert.Equal(t, r.Method, back.Method)
	assert.Equal(t, r.URL, back.URL)
	assert.Equal(t, r.Headers, back.Headers)
	assert.Equal(t, r.QueryParams, back.QueryParams)
	assert.Equal(t, r.Body, back.Body)
	// Tests scripts are not part of history entries.
	assert.Empty(t, back.Tests)
}
