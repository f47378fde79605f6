package interpolate

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("substitutes single variable", func(t *testing.T) {
		got := Resolve("{{host}}/api", map[string]string{"host": "example.com"})
		assert.Equal(t, "example.com/api", got)
	})

	t.Run("substitutes multiple variables", func(t *testing.T) {
		got := Resolve("{{host}}/api/{{id}}", map[string]string{
			"host": "example.com",
			"id":   "42",
		})
		assert.Equal(t, "example.com/api/42", got)
	})

	t.Run("substitutes repeated occurrences", func(t *testing.T) {
		got := Resolve("{{v}}-{{v}}-{{v}}", map[string]string{"v": "x"})
		assert.Equal(t, "x-x-x", got)
	})

	t.Run("leaves unknown placeholders untouched", func(t *testing.T) {
		got := Resolve("{{host}}/{{missing}}", map[string]string{"host": "a"})
		assert.Equal(t, "a/{{missing}}", got)
	})

	t.Run("no tokens means no change", func(t *testing.T) {
		templates := []string{
			"",
			"https://example.com/api/tasks",
			"plain text with {single} braces",
			`{"json": "body"}`,
		}
		vars := map[string]string{"host": "example.com", "json": "nope"}
		for _, tmpl := range templates {
			assert.Equal(t, tmpl, Resolve(tmpl, vars))
		}
	})

	t.Run("nil map passes through", func(t *testing.T) {
		assert.Equal(t, "{{host}}/api", Resolve("{{host}}/api", nil))
	})

	t.Run("does not re-substitute inside inserted values", func(t *testing.T) {
		// "host" is a substring of the value inserted for "h", but only the
		// literal {{host}} token form is ever replaced.
		got := Resolve("{{h}}", map[string]string{
			"h":    "the host is here",
			"host": "example.com",
		})
		assert.Equal(t, "the host is here", got)
	})

	t.Run("empty value erases the placeholder", func(t *testing.T) {
		got := Resolve("a{{gone}}b", map[string]string{"gone": ""})
		assert.Equal(t, "ab", got)
	})
}

func TestResolveBuiltins(t *testing.T) {
	t.Run("uuid builtin yields a valid uuid", func(t *testing.T) {
		got := Resolve("{{$uuid}}", nil)
		_, err := uuid.Parse(got)
		require.NoError(t, err)
	})

	t.Run("timestamp builtin yields unix seconds", func(t *testing.T) {
		before := time.Now().Unix()
		got := Resolve("{{$timestamp}}", nil)
		ts, err := strconv.ParseInt(got, 10, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ts, before)
		assert.LessOrEqual(t, ts-before, int64(5))
	})

	t.Run("builtins resolve before user variables", func(t *testing.T) {
		got := Resolve("{{$date}}/{{path}}", map[string]string{"path": "x"})
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}/x$`, got)
	})
}

func TestResolveMap(t *testing.T) {
	got := ResolveMap(
		map[string]string{"Authorization": "Bearer {{token}}", "Accept": "application/json"},
		map[string]string{"token": "abc"},
	)
	assert.Equal(t, "Bearer abc", got["Authorization"])
	assert.Equal(t, "application/json", got["Accept"])
}

func TestMerge(t *testing.T) {
	t.Run("later layers win", func(t *testing.T) {
		merged := Merge(
			map[string]string{"host": "collection.local", "port": "8080"},
			map[string]string{"host": "env.local"},
		)
		assert.Equal(t, "env.local", merged["host"])
		assert.Equal(t, "8080", merged["port"])
	})

	t.Run("nil layers are ignored", func(t *testing.T) {
		merged := Merge(nil, map[string]string{"a": "1"}, nil)
		assert.Equal(t, map[string]string{"a": "1"}, merged)
	})
}

func TestPlaceholders(t *testing.T) {
	t.Run("finds names in order of first appearance", func(t *testing.T) {
		got := Placeholders("{{host}}/api/{{id}}?h={{host}}")
		assert.Equal(t, []string{"host", "id"}, got)
	})

	t.Run("no tokens", func(t *testing.T) {
		assert.Empty(t, Placeholders("https://example.com"))
	})

	t.Run("unterminated token is ignored", func(t *testing.T) {
		assert.Empty(t, Placeholders("{{host"))
	})
}

func TestMissing(t *testing.T) {
	got := Missing("{{host}}/{{id}}/{{$uuid}}", map[string]string{"host": "a"})
	assert.Equal(t, []string{"id"}, got)
}
