package exporter

import (
	"strings"
	"testing"

	"github.com/avdeev/apilab/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurlCommand(t *testing.T) {
	t.Run("POST with header and body", func(t *testing.T) {
		a := &core.Assembled{
			Method:  core.MethodPost,
			URL:     "http://localhost:3000/api/x",
			Headers: map[string]string{"X-Test": "1"},
			Body:    `{"a":1}`,
		}
		cmd := CurlCommand(a)

		// The pieces appear in order: method, headers, body, then URL last.
		idxMethod := strings.Index(cmd, "curl -X POST")
		idxHeader := strings.Index(cmd, `-H "X-Test: 1"`)
		idxBody := strings.Index(cmd, `-d '{"a":1}'`)
		require.NotEqual(t, -1, idxMethod)
		require.NotEqual(t, -1, idxHeader)
		require.NotEqual(t, -1, idxBody)
		assert.Less(t, idxMethod, idxHeader)
		assert.Less(t, idxHeader, idxBody)
		assert.True(t, strings.HasSuffix(cmd, `"http://localhost:3000/api/x"`))
	})

	t.Run("GET omits the body flag", func(t *testing.T) {
		a := &core.Assembled{
			Method: core.MethodGet,
			URL:    "https://example.com/x",
			Body:   "ignored",
		}
		cmd := CurlCommand(a)
		assert.NotContains(t, cmd, "-d")
		assert.Contains(t, cmd, "curl -X GET")
	})

	t.Run("headers are sorted", func(t *testing.T) {
		a := &core.Assembled{
			Method: core.MethodGet,
			URL:    "https://example.com",
			Headers: map[string]string{
				"Z-Last":  "z",
				"A-First": "a",
			},
		}
		cmd := CurlCommand(a)
		assert.Less(t, strings.Index(cmd, "A-First"), strings.Index(cmd, "Z-Last"))
	})

	t.Run("double quotes in header values are escaped", func(t *testing.T) {
		a := &core.Assembled{
			Method:  core.MethodGet,
			URL:     "https://example.com",
			Headers: map[string]string{"X-Quote": `say "hi"`},
		}
		cmd := CurlCommand(a)
		assert.Contains(t, cmd, `-H "X-Quote: say \"hi\""`)
	})

	t.Run("single quotes in the body are escaped", func(t *testing.T) {
		a := &core.Assembled{
			Method: core.MethodPost,
			URL:    "https://example.com",
			Body:   `{"name":"O'Brien"}`,
		}
		cmd := CurlCommand(a)
		assert.Contains(t, cmd, `-d '{"name":"O'"'"'Brien"}'`)
	})

	t.Run("dollar signs in the URL are escaped", func(t *testing.T) {
		a := &core.Assembled{
			Method: core.MethodGet,
			URL:    "https://example.com/$ref",
		}
		cmd := CurlCommand(a)
		assert.True(t, strings.HasSuffix(cmd, `"https://example.com/\$ref"`))
	})
}

func TestResponseText(t *testing.T) {
	t.Run("JSON data is pretty-printed", func(t *testing.T) {
		record := &core.ResponseRecord{Data: map[string]any{"a": float64(1)}}
		assert.Equal(t, "{\n  \"a\": 1\n}", ResponseText(record))
	})

	t.Run("plain text is copied verbatim", func(t *testing.T) {
		record := &core.ResponseRecord{Data: "hello, world"}
		assert.Equal(t, "hello, world", ResponseText(record))
	})
}
