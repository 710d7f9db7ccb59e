package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a raw row from the record store. Field values keep whatever JSON
// type the store returned, so every accessor tolerates loose typing.
type Record struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime,omitempty"`
	Fields      Fields `json:"fields"`
}

type Fields map[string]any

// Has reports whether the field is present at all. The record store omits
// empty cells, so presence is the closest thing to "set".
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Value returns the raw field value.
func (f Fields) Value(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// String renders the field as a string. Numbers are formatted without a
// trailing ".0" so that 42 and "42" compare equal.
func (f Fields) String(name string) string {
	v, ok := f[name]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// StringOr returns the field as a string, or fallback when the field is absent.
// A present but empty string is returned as is.
func (f Fields) StringOr(name, fallback string) string {
	if !f.Has(name) {
		return fallback
	}
	return f.String(name)
}

// Trimmed is String with surrounding whitespace removed.
func (f Fields) Trimmed(name string) string {
	return strings.TrimSpace(f.String(name))
}

// Bool interprets booleans, and "YES"/"true" style strings.
func (f Fields) Bool(name string) bool {
	switch v := f[name].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}

// Number returns the field as float64, or 0 when it is absent or not numeric.
func (f Fields) Number(name string) float64 {
	switch v := f[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return n
		}
	}
	return 0
}

// IsEmpty reports whether the field is absent or holds a zero-ish value
// (nil, "", false, 0, empty list).
func (f Fields) IsEmpty(name string) bool {
	v, ok := f[name]
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// Stringify converts a loosely typed scalar to its canonical string form.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// EnsureList coerces a loosely typed reference field to a list:
// nil becomes empty, a scalar becomes a single element, a list passes through.
func EnsureList(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []any{t}
	}
}
