package catalog

import (
	"slices"
	"strings"
)

// FilterIDs keeps the ids containing query, case-insensitively. The query is
// trimmed first; an empty query keeps every id. Order is preserved.
func FilterIDs(ids []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.Contains(strings.ToLower(id), q) {
			out = append(out, id)
		}
	}
	return out
}

// DropdownIDs returns the ids offered for selection: the filtered ids, with
// the selected id prepended when the filter hid it.
func DropdownIDs(filtered []string, selected string) []string {
	if selected == "" || slices.Contains(filtered, selected) {
		return filtered
	}
	return append([]string{selected}, filtered...)
}

// ResolveExact returns the id equal to the trimmed query, if any.
func ResolveExact(ids []string, query string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", false
	}
	if slices.Contains(ids, q) {
		return q, true
	}
	return "", false
}
