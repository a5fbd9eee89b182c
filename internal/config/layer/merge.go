package layer

import (
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = cloneValue(srcVal)
			continue
		}

		// If both are maps, merge recursively
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			// Otherwise, src replaces dst
			dst[key] = cloneValue(srcVal)
		}
	}

	return dst
}

// cloneValue creates a deep copy of a value.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

// GetByPath retrieves a value from a nested map using a dot-separated path.
// The map is marshaled to JSON and walked with gjson, so path syntax
// follows gjson's own dotted-path rules.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, false
	}

	res := gjson.GetBytes(b, path)
	if !res.Exists() {
		return nil, false
	}

	return normalizeJSONValue(res.Value()), true
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Creates intermediate objects as needed. Implemented on sjson so the
// same path syntax GetByPath/DeleteByPath use governs writes too.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil {
		return
	}

	b, err := json.Marshal(data)
	if err != nil {
		return
	}

	out, err := sjson.SetBytes(b, path, value)
	if err != nil {
		return
	}

	replaceMapContents(data, out)
}

// DeleteByPath removes a value from a nested map using a dot-separated path.
// Returns true if the value was found and deleted.
func DeleteByPath(data map[string]any, path string) bool {
	if data == nil {
		return false
	}

	b, err := json.Marshal(data)
	if err != nil {
		return false
	}

	if !gjson.GetBytes(b, path).Exists() {
		return false
	}

	out, err := sjson.DeleteBytes(b, path)
	if err != nil {
		return false
	}

	replaceMapContents(data, out)
	return true
}

// replaceMapContents decodes jsonBytes and swaps dst's contents in place,
// so callers holding a reference to the original map see the update.
func replaceMapContents(dst map[string]any, jsonBytes []byte) {
	var decoded map[string]any
	if err := json.Unmarshal(jsonBytes, &decoded); err != nil {
		return
	}

	for k := range dst {
		delete(dst, k)
	}
	for k, v := range decoded {
		dst[k] = normalizeJSONValue(v)
	}
}

// normalizeJSONValue walks a value decoded by encoding/json (or returned
// by gjson.Result.Value) and folds whole-number float64s back to int, so
// a value set as a Go int survives a JSON round trip unchanged.
func normalizeJSONValue(v any) any {
	switch t := v.(type) {
	case float64:
		if !math.IsInf(t, 0) && !math.IsNaN(t) && t == math.Trunc(t) &&
			t >= math.MinInt && t <= math.MaxInt {
			return int(t)
		}
		return t
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeJSONValue(vv)
		}
		return t
	case []any:
		for i, vv := range t {
			t[i] = normalizeJSONValue(vv)
		}
		return t
	default:
		return v
	}
}

// FlattenMap flattens a nested map into a single-level map with
// dot-separated keys, walked via gjson.ForEach.
func FlattenMap(data map[string]any) map[string]any {
	result := make(map[string]any)

	b, err := json.Marshal(data)
	if err != nil {
		return result
	}

	flattenResult(gjson.ParseBytes(b), "", result)
	return result
}

func flattenResult(res gjson.Result, prefix string, result map[string]any) {
	res.ForEach(func(key, val gjson.Result) bool {
		fullKey := key.String()
		if prefix != "" {
			fullKey = prefix + "." + fullKey
		}

		if val.IsObject() {
			flattenResult(val, fullKey, result)
		} else {
			result[fullKey] = normalizeJSONValue(val.Value())
		}
		return true
	})
}

// UnflattenMap converts a flattened map with dot-separated keys back to nested structure.
func UnflattenMap(data map[string]any) map[string]any {
	result := make(map[string]any)
	for path, val := range data {
		SetByPath(result, path, val)
	}
	return result
}

// DiffMaps returns the paths that differ between two maps.
// Returns added, modified, and removed paths.
func DiffMaps(old, new map[string]any) (added, modified, removed []string) {
	oldFlat := FlattenMap(old)
	newFlat := FlattenMap(new)

	// Find added and modified
	for path, newVal := range newFlat {
		if oldVal, exists := oldFlat[path]; exists {
			if !valuesEqual(oldVal, newVal) {
				modified = append(modified, path)
			}
		} else {
			added = append(added, path)
		}
	}

	// Find removed
	for path := range oldFlat {
		if _, exists := newFlat[path]; !exists {
			removed = append(removed, path)
		}
	}

	return added, modified, removed
}

// valuesEqual compares two values for equality.
func valuesEqual(a, b any) bool {
	// Handle nil cases
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	// Compare by type
	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok {
			return false
		}
		return mapsEqual(va, vb)
	case []any:
		vb, ok := b.([]any)
		if !ok {
			return false
		}
		return slicesEqual(va, vb)
	default:
		return a == b
	}
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !valuesEqual(va, vb) {
			return false
		}
	}
	return true
}

func slicesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
