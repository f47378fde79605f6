package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvCommands(t *testing.T) {
	t.Run("create, set, list", func(t *testing.T) {
		dir := t.TempDir()

		_, err := execute(t, dir, "env", "create", "staging")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "set", "staging", "host=staging.example.com")
		require.NoError(t, err)

		out, err := execute(t, dir, "env", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "staging")
		assert.Contains(t, out, "(1 variables)")
	})

	t.Run("selected environment resolves send placeholders", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v2/ping", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		dir := t.TempDir()
		_, err := execute(t, dir, "env", "create", "staging")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "set", "staging", "base="+server.URL, "version=v2")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "use", "staging")
		require.NoError(t, err)

		_, err = execute(t, dir, "send", "GET", "{{base}}/{{version}}/ping")
		require.NoError(t, err)
	})

	t.Run("unuse stops substitution", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, dir, "env", "create", "prod")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "use", "prod")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "unuse")
		require.NoError(t, err)

		out, err := execute(t, dir, "env", "list")
		require.NoError(t, err)
		assert.NotContains(t, out, "*")
	})

	t.Run("unset removes variables", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, dir, "env", "create", "e")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "set", "e", "a=1", "b=2")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "unset", "e", "a")
		require.NoError(t, err)

		out, err := execute(t, dir, "env", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "(1 variables)")
	})

	t.Run("imports a dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "staging.env")
		require.NoError(t, os.WriteFile(file, []byte("HOST=api.example.com\nTOKEN=secret\n"), 0o600))

		out, err := execute(t, dir, "env", "import", "fresh", file)
		require.NoError(t, err)
		assert.Contains(t, out, `Imported 2 variables into "fresh"`)

		out, err = execute(t, dir, "env", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "(2 variables)")
	})

	t.Run("delete clears a selected environment", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, dir, "env", "create", "doomed")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "use", "doomed")
		require.NoError(t, err)
		_, err = execute(t, dir, "env", "delete", "doomed")
		require.NoError(t, err)

		out, err := execute(t, dir, "env", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "No environments.")
	})
}
