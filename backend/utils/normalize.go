package utils

import "strconv"

// NormalizeID extracts a numeric identifier from the shapes the API accepts.
// Clients and older exports are inconsistent: an entry may be a bare number,
// a numeric string, or a populated object carrying its own id field. Anything
// unrecognizable yields ok=false and the caller skips the entry.
func NormalizeID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case uint:
		return v, v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint(v), true
	case float64:
		// JSON numbers decode as float64
		if v <= 0 || v != float64(uint(v)) {
			return 0, false
		}
		return uint(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	case map[string]interface{}:
		for _, key := range []string{"id", "_id", "ID"} {
			if inner, exists := v[key]; exists {
				return NormalizeID(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// NormalizeIDList applies NormalizeID to every entry, dropping the malformed
// ones and any duplicates while preserving first-seen order.
func NormalizeIDList(values []interface{}) []uint {
	ids := make([]uint, 0, len(values))
	seen := make(map[uint]bool, len(values))
	for _, value := range values {
		id, ok := NormalizeID(value)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
