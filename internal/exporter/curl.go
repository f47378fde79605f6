// Package exporter renders assembled requests and normalized responses into
// portable forms: a curl command line and clipboard-ready response text.
package exporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/avdeev/apilab/internal/core"
)

// CurlCommand renders an assembled request as a runnable curl invocation:
//
//	curl -X METHOD -H "Key: Value" ... -d 'body' "https://host/path"
//
// Headers are emitted in sorted order for a deterministic result; -d appears
// only for non-GET requests with a body; the URL is the resolved absolute
// URL and always comes last. Header, body, and URL values are shell-escaped,
// so embedded quotes survive a paste into a terminal.
func CurlCommand(a *core.Assembled) string {
	var sb strings.Builder
	sb.WriteString("curl -X ")
	sb.WriteString(string(a.Method))

	keys := make([]string, 0, len(a.Headers))
	for k := range a.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(` -H "`)
		sb.WriteString(escapeDouble(fmt.Sprintf("%s: %s", k, a.Headers[k])))
		sb.WriteString(`"`)
	}

	if a.Method != core.MethodGet && a.HasBody() {
		sb.WriteString(" -d '")
		sb.WriteString(escapeSingle(a.Body))
		sb.WriteString("'")
	}

	sb.WriteString(` "`)
	sb.WriteString(escapeDouble(a.URL))
	sb.WriteString(`"`)

	return sb.String()
}

// escapeDouble escapes a value for a double-quoted shell context.
func escapeDouble(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"`", "\\`",
		`$`, `\$`,
	)
	return replacer.Replace(s)
}

// escapeSingle escapes a value for a single-quoted shell context. Single
// quotes cannot be backslash-escaped inside single quotes; each one closes
// the string, emits a quoted quote, and reopens it.
func escapeSingle(s string) string {
	return strings.ReplaceAll(s, "'", `'"'"'`)
}

// ResponseText serializes a response body for the clipboard. JSON bodies are
// pretty-printed with two-space indentation; plain-text bodies are copied
// verbatim rather than JSON-quoted.
func ResponseText(record *core.ResponseRecord) string {
	if text, ok := record.Data.(string); ok {
		return text
	}
	return core.PrettyJSON(record.Data)
}

// CopyToClipboard places text on the system clipboard.
func CopyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}
