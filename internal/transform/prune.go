package transform

// RemoveEmpty drops empty strings, nils, and empty objects and lists from a
// JSON-like value, recursively. Zero numbers and false are kept. An object
// that ends up empty is returned as an empty map; a list as nil.
func RemoveEmpty(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))

		for k, item := range val {
			if cleaned, ok := prune(item); ok {
				out[k] = cleaned
			}
		}

		return out
	case []any:
		var out []any

		for _, item := range val {
			if cleaned, ok := prune(item); ok {
				out = append(out, cleaned)
			}
		}

		return out
	default:
		return v
	}
}

// prune cleans v and reports whether anything worth keeping is left.
func prune(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return val, val != ""
	case map[string]any:
		cleaned := RemoveEmpty(val).(map[string]any)
		return cleaned, len(cleaned) > 0
	case []any:
		cleaned, _ := RemoveEmpty(val).([]any)
		return cleaned, len(cleaned) > 0
	default:
		return v, true
	}
}
