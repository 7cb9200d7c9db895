// Package nested provides a first-match key search over arbitrarily shaped
// decoded JSON values. Scraped state blobs have no stable schema, so callers
// look fields up by name wherever they happen to live.
package nested

// FindKey walks root depth-first and returns the value of the first
// occurrence of key, or nil when the structure contains no such key.
// Maps are checked at their own level before recursing into values; slices
// are searched element by element. Scalars are ignored.
func FindKey(root any, key string) any {
	switch v := root.(type) {
	case map[string]any:
		if val, ok := v[key]; ok {
			return val
		}

		for _, child := range v {
			if found := FindKey(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range v {
			if found := FindKey(child, key); found != nil {
				return found
			}
		}
	}

	return nil
}

// FindString is FindKey narrowed to string values. Non-string matches are
// treated as missing.
func FindString(root any, key string) string {
	if s, ok := FindKey(root, key).(string); ok {
		return s
	}

	return ""
}

// FindMap is FindKey narrowed to object values.
func FindMap(root any, key string) map[string]any {
	if m, ok := FindKey(root, key).(map[string]any); ok {
		return m
	}

	return nil
}

// FindInt is FindKey narrowed to numeric values. JSON numbers decode as
// float64, so that is the shape accepted here.
func FindInt(root any, key string) (int64, bool) {
	switch n := FindKey(root, key).(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	}

	return 0, false
}
