package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCommands(t *testing.T) {
	t.Run("set and list", func(t *testing.T) {
		dir := t.TempDir()

		_, err := execute(t, dir, "progress", "set", "lesson-4", "send-request")
		require.NoError(t, err)
		_, err = execute(t, dir, "progress", "set", "lesson-4", "save-collection")
		require.NoError(t, err)
		_, err = execute(t, dir, "progress", "set", "lesson-4", "save-collection", "--not-done")
		require.NoError(t, err)

		out, err := execute(t, dir, "progress", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "lesson-4:")
		assert.Contains(t, out, "[x] send-request")
		assert.NotContains(t, out, "save-collection")
	})

	t.Run("list a single lesson", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, dir, "progress", "set", "lesson-1", "a")
		require.NoError(t, err)
		_, err = execute(t, dir, "progress", "set", "lesson-2", "b")
		require.NoError(t, err)

		out, err := execute(t, dir, "progress", "list", "lesson-2")
		require.NoError(t, err)
		assert.Contains(t, out, "lesson-2:")
		assert.NotContains(t, out, "lesson-1")
	})

	t.Run("empty state", func(t *testing.T) {
		out, err := execute(t, t.TempDir(), "progress", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No progress recorded.")
	})
}
