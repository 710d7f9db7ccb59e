package airtable

import (
	"fmt"
	"strings"
)

// Eq builds a field-equality predicate: {field}='value'.
func Eq(field, value string) string {
	return fmt.Sprintf("{%s}='%s'", field, escape(value))
}

// And conjoins predicates. Empty predicates are skipped.
func And(predicates ...string) string {
	var parts []string
	for _, p := range predicates {
		if p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "AND(" + strings.Join(parts, ",") + ")"
}

func escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
