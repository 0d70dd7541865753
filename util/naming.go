package util

import (
	"strings"
	"unicode"
)

// CamelToSnake converts a camelCase wire key to its snake_case column name,
// e.g. "defaultSimTypeId" -> "default_sim_type_id".
func CamelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeToCamel is the inverse of CamelToSnake on keys that contain no
// consecutive underscores and no trailing underscore.
func SnakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// SnakeKeys rewrites the keys of a partial-update body from camelCase to
// snake_case and drops server-owned keys that must never be client-written.
func SnakeKeys(in map[string]any, protected ...string) map[string]any {
	blocked := map[string]bool{}
	for _, p := range protected {
		blocked[p] = true
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		sk := CamelToSnake(k)
		if blocked[sk] {
			continue
		}
		out[sk] = v
	}
	return out
}
