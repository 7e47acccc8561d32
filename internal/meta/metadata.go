package meta

import (
	"encoding/json"
	"sort"
)

// Metadata maps lowercase front matter keys to their values.
type Metadata map[string]Value

// Entry is a single key/value pair of Metadata.
type Entry struct {
	Key   string
	Value Value
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Lookup returns the value of the first key in keys that is present.
func (m Metadata) Lookup(keys ...string) (Value, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Get returns the value of the first key in keys that is present, or def.
// It lets callers say "prefer seotitle, fall back to title" in one call.
func (m Metadata) Get(keys []string, def Value) Value {
	if v, ok := m.Lookup(keys...); ok {
		return v
	}
	return def
}

// GetString is Get rendered as text.
func (m Metadata) GetString(keys []string, def string) string {
	if v, ok := m.Lookup(keys...); ok && v != nil {
		return v.String()
	}
	return def
}

// FirstString returns the first value among keys whose text is non-empty.
func (m Metadata) FirstString(keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

// Asset returns key as an asset when it holds a nested mapping.
func (m Metadata) Asset(key string) (*Asset, bool) {
	a, ok := m[key].(*Asset)
	return a, ok
}

// All returns every entry ordered by key.
func (m Metadata) All() []Entry {
	keys := m.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: k, Value: m[k]})
	}
	return out
}

// Clone returns a deep copy; assets are copied rather than shared.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies assets and lists recursively; scalars are immutable.
func cloneValue(v Value) Value {
	switch vv := v.(type) {
	case *Asset:
		if vv == nil {
			return vv
		}
		return vv.Clone()
	case List:
		if vv == nil {
			return vv
		}
		out := make(List, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON emits an object with keys in sorted order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(m))
}
