package util

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePatternPath cleans a path to forward slashes without a leading "./".
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// RelativeTo renders p relative to root with forward slashes. Paths outside
// root are returned normalized but otherwise unchanged.
func RelativeTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return NormalizePatternPath(p)
	}
	return NormalizePatternPath(rel)
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
