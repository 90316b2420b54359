package types

import "strings"

// StripGenerics removes every <...> segment, including nested ones:
// "Outer<T>.Inner<List<U>>" becomes "Outer.Inner".
func StripGenerics(name string) string {
	if !strings.ContainsRune(name, '<') {
		return strings.TrimSpace(name)
	}
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Split normalizes a written type into a bare name and dimension count.
// Generic arguments are dropped, "T..." counts as one dimension, and
// wildcards collapse to their upper bound or Object.
func Split(written string) (string, int) {
	name := strings.TrimSpace(written)
	dims := 0
	if strings.HasSuffix(name, "...") {
		name = strings.TrimSuffix(name, "...")
		dims++
	}
	name = StripGenerics(name)
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
		dims++
	}
	if strings.HasPrefix(name, "?") {
		rest := strings.TrimSpace(strings.TrimPrefix(name, "?"))
		if strings.HasPrefix(rest, "extends ") {
			name = strings.TrimSpace(strings.TrimPrefix(rest, "extends "))
		} else {
			name = Object
		}
	}
	name = strings.Join(strings.Fields(name), "")
	return name, dims
}

// NormalizeVariadic rewrites a trailing "..." as "[]".
func NormalizeVariadic(name string) string {
	if strings.HasSuffix(name, "...") {
		return strings.TrimSuffix(name, "...") + "[]"
	}
	return name
}

// SimpleName returns the last dotted segment.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
