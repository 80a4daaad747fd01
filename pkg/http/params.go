package http

import (
	"sort"
	"strconv"
)

// Param is one key/value pair of a Params.
type Param struct {
	Key   string
	Value any
}

// Params is an immutable ordered mapping from string keys to values. It holds
// server, query and cookie parameters, attributes, array-shaped parsed bodies
// and the uploaded file tree.
//
// Values are stored as given. Nested structures are Params or []any.
// The zero value is empty.
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams builds Params from pairs. A repeated key keeps its first
// position and takes the last value.
func NewParams(pairs ...Param) Params {
	p := Params{
		keys:   make([]string, 0, len(pairs)),
		values: make(map[string]any, len(pairs)),
	}
	for _, kv := range pairs {
		if _, ok := p.values[kv.Key]; !ok {
			p.keys = append(p.keys, kv.Key)
		}
		p.values[kv.Key] = kv.Value
	}
	return p
}

// ParamsFromMap builds Params from m with keys in sorted order.
func ParamsFromMap(m map[string]any) Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	p := Params{keys: keys, values: make(map[string]any, len(m))}
	for k, v := range m {
		p.values[k] = v
	}
	return p
}

// ParamsFromStrings builds Params from string pairs such as a parsed query.
// Only the first value of each key is kept.
func ParamsFromStrings(m map[string][]string) Params {
	flat := make(map[string]any, len(m))
	for k, vs := range m {
		if len(vs) > 0 {
			flat[k] = vs[0]
		}
	}
	return ParamsFromMap(flat)
}

// paramsFromList indexes a list as "0", "1", ...
func paramsFromList(list []any) Params {
	p := Params{keys: make([]string, len(list)), values: make(map[string]any, len(list))}
	for i, v := range list {
		k := strconv.Itoa(i)
		p.keys[i] = k
		p.values[k] = v
	}
	return p
}

// Get returns the value for key.
func (p Params) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Value returns the value for key, or def when key is absent.
func (p Params) Value(key string, def any) any {
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of keys.
func (p Params) Len() int { return len(p.keys) }

// Keys returns the keys in order.
func (p Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// All returns every pair in order.
func (p Params) All() []Param {
	out := make([]Param, len(p.keys))
	for i, k := range p.keys {
		out[i] = Param{Key: k, Value: p.values[k]}
	}
	return out
}

// Map returns the pairs as a new map.
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// With returns a copy with key set to value. An existing key keeps its
// position.
func (p Params) With(key string, value any) Params {
	_, exists := p.values[key]
	out := p.copy(1)
	if !exists {
		out.keys = append(out.keys, key)
	}
	out.values[key] = value
	return out
}

// Without returns a copy without key. An absent key returns p.
func (p Params) Without(key string) Params {
	if _, ok := p.values[key]; !ok {
		return p
	}
	out := Params{
		keys:   make([]string, 0, len(p.keys)-1),
		values: make(map[string]any, len(p.values)-1),
	}
	for _, k := range p.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.values[k] = p.values[k]
	}
	return out
}

// Merge returns p with every pair of other set on top of it.
func (p Params) Merge(other Params) Params {
	out := p.copy(other.Len())
	for _, k := range other.keys {
		if _, ok := out.values[k]; !ok {
			out.keys = append(out.keys, k)
		}
		out.values[k] = other.values[k]
	}
	return out
}

func (p Params) copy(extra int) Params {
	out := Params{
		keys:   make([]string, len(p.keys), len(p.keys)+extra),
		values: make(map[string]any, len(p.values)+extra),
	}
	copy(out.keys, p.keys)
	for k, v := range p.values {
		out.values[k] = v
	}
	return out
}
