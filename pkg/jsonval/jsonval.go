// Package jsonval provides helpers for working with decoded JSON values
// (the any-typed object/array/string/number/bool/null representation
// produced by encoding/json).
package jsonval

// StripNulls returns a copy of v with every null member removed at
// every nesting level: object keys whose value is null disappear, and
// null elements are dropped from arrays. Non-container values are
// returned unchanged. The operation is idempotent.
func StripNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, member := range val {
			if member == nil {
				continue
			}
			out[k] = StripNulls(member)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, member := range val {
			if member == nil {
				continue
			}
			out = append(out, StripNulls(member))
		}
		return out
	default:
		return v
	}
}
