package graph

// Conversion helpers for values coming back from the store. Anything that
// does not serialize to JSON (temporal types, spatial points) is dropped
// from payloads rather than surfaced as an error.

func sanitizeProps(props map[string]interface{}) map[string]interface{} {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		if sv, ok := sanitizeValue(v); ok {
			out[k] = sv
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sanitizeValue(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case nil, bool, string, int, int64, float64:
		return v, true
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			if sv, ok := sanitizeValue(item); ok {
				out = append(out, sv)
			}
		}
		return out, true
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if sv, ok := sanitizeValue(item); ok {
				out[k] = sv
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asFloatPtr(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		f := n
		return &f
	case int64:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	}
	return nil
}

func asStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}
