package expressions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rendis/casegraph/pkg/schema"
)

// Interpolate resolves ${{path}} references in tmpl against data, where path
// is dot-delimited (e.g. "record.officer"). It renders one line per case in
// the CLI list output.
func Interpolate(tmpl string, data map[string]any) (string, error) {
	var result strings.Builder
	result.Grow(len(tmpl))

	i := 0
	for i < len(tmpl) {
		idx := strings.Index(tmpl[i:], "${{")
		if idx == -1 {
			result.WriteString(tmpl[i:])
			break
		}
		result.WriteString(tmpl[i : i+idx])
		start := i + idx + 3

		end := strings.Index(tmpl[start:], "}}")
		if end == -1 {
			return "", schema.NewError(schema.ErrCodeValidation, "unclosed ${{ reference")
		}
		end += start

		path := strings.TrimSpace(tmpl[start:end])
		if path == "" {
			return "", schema.NewError(schema.ErrCodeValidation, "empty reference: ${{ }}")
		}

		val, err := traversePath(data, path)
		if err != nil {
			return "", err
		}
		result.WriteString(inline(val))
		i = end + 2
	}

	return result.String(), nil
}

// traversePath navigates into nested maps using a dot-delimited path.
func traversePath(root map[string]any, path string) (any, error) {
	var current any = root
	for i, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"empty segment in path %q at position %d", path, i)
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"cannot traverse into non-object at %q in %q (type: %T)", seg, path, current)
		}
		val, ok := m[seg]
		if !ok {
			keys := mapKeys(m)
			return nil, schema.NewErrorf(schema.ErrCodeValidation,
				"field %q not found in %q; available: [%s]", seg, path, strings.Join(keys, ", ")).
				WithDetails(map[string]any{"path": path, "available_fields": keys})
		}
		current = val
	}
	return current, nil
}

// inline renders a resolved value as text. Strings are written as-is,
// composite values as JSON.
func inline(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// mapKeys returns sorted keys from a map[string]any.
func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
