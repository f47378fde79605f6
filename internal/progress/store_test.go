package progress

import (
	"context"
	"testing"

	"github.com/avdeev/apilab/internal/storage/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	kv, err := filesystem.New(t.TempDir())
	require.NoError(t, err)
	store := NewStore(kv)

	t.Run("unset task is not completed", func(t *testing.T) {
		done, err := store.Completed(ctx, "lesson-1", "task-1")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("set and clear a flag", func(t *testing.T) {
		require.NoError(t, store.SetCompleted(ctx, "lesson-1", "task-1", true))
		done, err := store.Completed(ctx, "lesson-1", "task-1")
		require.NoError(t, err)
		assert.True(t, done)

		require.NoError(t, store.SetCompleted(ctx, "lesson-1", "task-1", false))
		done, err = store.Completed(ctx, "lesson-1", "task-1")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("lessons are independent", func(t *testing.T) {
		require.NoError(t, store.SetCompleted(ctx, "lesson-2", "task-1", true))
		require.NoError(t, store.SetCompleted(ctx, "lesson-3", "task-9", true))

		lesson, err := store.Lesson(ctx, "lesson-2")
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"task-1": true}, lesson)

		all, err := store.All(ctx)
		require.NoError(t, err)
		assert.Contains(t, all, "lesson-2")
		assert.Contains(t, all, "lesson-3")
	})
}
