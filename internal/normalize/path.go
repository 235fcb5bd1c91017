// Package normalize flattens the prediction backend's JSON payloads.
//
// The backend has changed shape over time and does not say which shape it
// used, so every field is read through an ordered list of candidate paths and
// the first usable value wins. Fields are resolved independently: a payload
// may carry the recommendation under latest.result and the prices under
// latest.result.prediction.
package normalize

import (
	"strings"
)

// Path is a dotted key path into decoded JSON, e.g. "latest.result.prediction".
// The empty path addresses the root.
type Path string

// Join appends a key (which may itself be dotted).
func (p Path) Join(key string) Path {
	if p == "" {
		return Path(key)
	}
	if key == "" {
		return p
	}
	return p + "." + Path(key)
}

// Lookup walks raw along path through nested objects. It reports false for a
// missing key, a JSON null, or a non-object on the way.
func Lookup(raw any, path Path) (any, bool) {
	cur := raw
	if path != "" {
		for _, key := range strings.Split(string(path), ".") {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			cur = m[key]
		}
	}
	return cur, cur != nil
}

// Items returns the array found at raw itself, or at the first of keys that
// holds one. Bare arrays and wrapped arrays are both accepted.
func Items(raw any, keys ...Path) []any {
	if arr, ok := raw.([]any); ok {
		return arr
	}
	for _, k := range keys {
		if v, ok := Lookup(raw, k); ok {
			if arr, ok := v.([]any); ok {
				return arr
			}
		}
	}
	return nil
}
