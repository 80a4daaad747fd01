package http

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Header represents a single HTTP header line.
type Header struct {
	Key   string
	Value string
}

// Field is one header name with all its values, as returned by Headers.All.
type Field struct {
	Name   string
	Values []string
}

// Headers is an ordered, case-insensitive multi-map of header fields.
// Names are case-insensitive (RFC 9110) but the casing first seen is kept.
//
// Headers is immutable: Set, Add and Remove return a new value and never
// touch the receiver, so a Headers value can be shared freely. The zero
// value is an empty set of headers.
type Headers struct {
	keys    []string          // canonical (lowercase) keys in insertion order
	entries map[string]*Field // canonical key -> field; fields are never mutated
}

// NewHeaders builds a header set from fields. Repeated names, in any casing,
// are aggregated under the casing seen first.
func NewHeaders(fields ...Field) (Headers, error) {
	h := Headers{}
	for _, f := range fields {
		vals, err := headerValues("NewHeaders", f.Name, f.Values)
		if err != nil {
			return Headers{}, err
		}
		h = h.appendValues(f.Name, vals)
	}
	return h, nil
}

// Get returns all values for name (case-insensitive), or nil if absent.
// The returned slice is a copy.
func (h Headers) Get(name string) []string {
	f, ok := h.entries[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return append([]string(nil), f.Values...)
}

// Has reports whether a header exists for name (case-insensitive).
func (h Headers) Has(name string) bool {
	_, ok := h.entries[strings.ToLower(name)]
	return ok
}

// Line returns the values for name joined with ", ", or "" if absent.
func (h Headers) Line(name string) string {
	f, ok := h.entries[strings.ToLower(name)]
	if !ok {
		return ""
	}
	return strings.Join(f.Values, ", ")
}

// Name returns the original casing stored for name.
func (h Headers) Name(name string) (string, bool) {
	f, ok := h.entries[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return f.Name, true
}

// Len returns the number of distinct header names.
func (h Headers) Len() int {
	return len(h.keys)
}

// All returns every field in insertion order, under its original casing.
func (h Headers) All() []Field {
	out := make([]Field, 0, len(h.keys))
	for _, k := range h.keys {
		f := h.entries[k]
		out = append(out, Field{Name: f.Name, Values: append([]string(nil), f.Values...)})
	}
	return out
}

// Pairs flattens the headers into one Header per value, in order.
func (h Headers) Pairs() []Header {
	var out []Header
	for _, k := range h.keys {
		f := h.entries[k]
		for _, v := range f.Values {
			out = append(out, Header{Key: f.Name, Value: v})
		}
	}
	return out
}

// Set replaces all values for name and remembers name's casing.
// value may be a string, a number, a fmt.Stringer, or a non-empty slice of those.
func (h Headers) Set(name string, value any) (Headers, error) {
	vals, err := headerValues("Set", name, value)
	if err != nil {
		return h, err
	}
	return h.replace(name, vals, false), nil
}

// Add appends value to name, creating the field with this casing if absent.
func (h Headers) Add(name string, value any) (Headers, error) {
	vals, err := headerValues("Add", name, value)
	if err != nil {
		return h, err
	}
	return h.appendValues(name, vals), nil
}

// Remove returns headers without name. Removing an absent name returns h.
func (h Headers) Remove(name string) Headers {
	key := strings.ToLower(name)
	if _, ok := h.entries[key]; !ok {
		return h
	}
	out := Headers{
		keys:    make([]string, 0, len(h.keys)-1),
		entries: make(map[string]*Field, len(h.entries)-1),
	}
	for _, k := range h.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.entries[k] = h.entries[k]
	}
	return out
}

// prepend sets name to values and moves it to the front.
func (h Headers) prepend(name string, values []string) Headers {
	return h.replace(name, values, true)
}

// replace returns a copy with name set to values. The field keeps its
// position unless first is true, in which case it moves to the front.
func (h Headers) replace(name string, values []string, first bool) Headers {
	key := strings.ToLower(name)
	f := &Field{Name: name, Values: append([]string(nil), values...)}

	out := Headers{
		keys:    make([]string, 0, len(h.keys)+1),
		entries: make(map[string]*Field, len(h.entries)+1),
	}
	_, exists := h.entries[key]
	if first {
		out.keys = append(out.keys, key)
	}
	for _, k := range h.keys {
		if k == key {
			if !first {
				out.keys = append(out.keys, k)
			}
			continue
		}
		out.keys = append(out.keys, k)
		out.entries[k] = h.entries[k]
	}
	if !exists && !first {
		out.keys = append(out.keys, key)
	}
	out.entries[key] = f
	return out
}

// appendValues returns a copy with values appended to name. An existing
// field keeps its casing.
func (h Headers) appendValues(name string, values []string) Headers {
	key := strings.ToLower(name)
	old, exists := h.entries[key]

	out := Headers{
		keys:    make([]string, len(h.keys), len(h.keys)+1),
		entries: make(map[string]*Field, len(h.entries)+1),
	}
	copy(out.keys, h.keys)
	for k, f := range h.entries {
		out.entries[k] = f
	}

	if !exists {
		out.keys = append(out.keys, key)
		out.entries[key] = &Field{Name: name, Values: append([]string(nil), values...)}
		return out
	}

	merged := make([]string, 0, len(old.Values)+len(values))
	merged = append(merged, old.Values...)
	merged = append(merged, values...)
	out.entries[key] = &Field{Name: old.Name, Values: merged}
	return out
}

// headerValues validates name and coerces value into a non-empty list of
// trimmed header values.
func headerValues(op, name string, value any) ([]string, error) {
	if !httpguts.ValidHeaderFieldName(name) {
		return nil, invalidInput(op, "header name %q is not a valid token", name)
	}

	var raw []string
	switch v := value.(type) {
	case []string:
		raw = v
	case []any:
		raw = make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := scalarString(elem)
			if !ok {
				return nil, invalidInput(op, "header %q: value of type %T is not a string or number", name, elem)
			}
			raw = append(raw, s)
		}
	default:
		s, ok := scalarString(value)
		if !ok {
			return nil, invalidInput(op, "header %q: value of type %T is not a string or number", name, value)
		}
		raw = []string{s}
	}

	if len(raw) == 0 {
		return nil, invalidInput(op, "header %q: values must be a non-empty list", name)
	}

	out := make([]string, len(raw))
	for i, s := range raw {
		s = strings.Trim(s, " \t")
		if !httpguts.ValidHeaderFieldValue(s) {
			return nil, invalidInput(op, "header %q: invalid value %q", name, s)
		}
		out[i] = s
	}
	return out, nil
}

// scalarString coerces strings and numbers to their string form.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}

// ContentLength returns the Content-Length header value, or -1 if absent or invalid.
func (h Headers) ContentLength() int64 {
	v := h.Line("Content-Length")
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// IsChunked returns true if Transfer-Encoding contains "chunked".
func (h Headers) IsChunked() bool {
	v := h.Line("Transfer-Encoding")
	return strings.Contains(strings.ToLower(v), "chunked")
}
