// Package interpolate substitutes {{name}} placeholders in request fields
// using the variable set of the selected environment and collection.
package interpolate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BuiltinFunc generates a dynamic value at resolve time.
type BuiltinFunc func() string

// builtins are dynamic placeholders resolved before user variables.
// User variables cannot shadow them because variable names starting
// with '$' are rejected at the CLI boundary.
var builtins = map[string]BuiltinFunc{
	"$uuid": func() string {
		return uuid.New().String()
	},
	"$timestamp": func() string {
		return fmt.Sprintf("%d", time.Now().Unix())
	},
	"$isoTimestamp": func() string {
		return time.Now().Format(time.RFC3339)
	},
	"$date": func() string {
		return time.Now().Format("2006-01-02")
	},
}

// Resolve replaces every literal occurrence of {{key}} in template with the
// corresponding value from vars. Keys absent from vars are left untouched.
// Each key is applied in a single pass, so a key appearing inside an already
// inserted value is not expanded again. A nil or empty map returns the
// template unchanged (no environment selected).
//
// Keys are applied in sorted order so the result is deterministic.
func Resolve(template string, vars map[string]string) string {
	if template == "" {
		return template
	}

	result := template
	for name, fn := range builtins {
		token := "{{" + name + "}}"
		if strings.Contains(result, token) {
			result = strings.ReplaceAll(result, token, fn())
		}
	}

	if len(vars) == 0 {
		return result
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		result = strings.ReplaceAll(result, "{{"+k+"}}", vars[k])
	}

	return result
}

// ResolveMap resolves every value in the input map.
func ResolveMap(in, vars map[string]string) map[string]string {
	result := make(map[string]string, len(in))
	for k, v := range in {
		result[k] = Resolve(v, vars)
	}
	return result
}

// Merge flattens variable layers into a single map. Later layers win, so
// callers pass collection variables first and environment variables last.
func Merge(layers ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			result[k] = v
		}
	}
	return result
}

// Placeholders returns the distinct placeholder names found in the input,
// in order of first appearance.
func Placeholders(input string) []string {
	var names []string
	seen := make(map[string]bool)

	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			break
		}
		name := rest[start+2 : start+end]
		rest = rest[start+end+2:]
		if name == "" || strings.ContainsAny(name, "{}") {
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}

// Missing returns the placeholders in input that neither vars nor the
// builtins can satisfy.
func Missing(input string, vars map[string]string) []string {
	var missing []string
	for _, name := range Placeholders(input) {
		if _, ok := builtins[name]; ok {
			continue
		}
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
