package datasource

import (
	"fmt"
	"sort"
)

// Record is a single backend document keyed by field name. Values keep
// whatever types the JSON decoder produced, so numbers arrive as
// float64 and nested structures as maps and slices.
type Record map[string]any

// Name returns the record's primary identifier, the "name" field.
func (r Record) Name() string {
	return r.String("name")
}

// String returns the value under key rendered as a string. Missing and
// nil values yield "". Non-string values are formatted with fmt.Sprint.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value under key as an int. JSON numbers decode as
// float64 and are truncated; missing keys and other types yield 0.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// Keys returns the record's field names in sorted order. Relationship
// discovery walks fields through Keys so that edge insertion order is
// deterministic regardless of map iteration order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
