package faq

import (
	"strings"
	"unicode"
)

// NormalizeDepartment strips every whitespace rune and lowercases the rest.
// The same form is used when storing and when filtering by department.
func NormalizeDepartment(department string) string {
	var builder strings.Builder
	builder.Grow(len(department))
	for _, r := range department {
		if unicode.IsSpace(r) {
			continue
		}
		builder.WriteRune(r)
	}
	return strings.ToLower(builder.String())
}

// NormalizeEntities lowercases each entity, keeping order and duplicates.
func NormalizeEntities(entities []string) []string {
	out := make([]string, len(entities))
	for i, entity := range entities {
		out[i] = strings.ToLower(entity)
	}
	return out
}

// NormalizeContext lowercases the whole context string.
func NormalizeContext(context string) string {
	return strings.ToLower(context)
}
