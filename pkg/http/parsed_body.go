package http

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// BodyShape tells which of the three legal shapes a ParsedBody has.
type BodyShape int

const (
	// BodyAbsent means no body was parsed.
	BodyAbsent BodyShape = iota
	// BodyArray is an ordered key/value mapping, e.g. a decoded form.
	BodyArray
	// BodyObject is an opaque structured value: a struct, a pointer to a
	// struct, or an AST object or array node.
	BodyObject
)

func (s BodyShape) String() string {
	switch s {
	case BodyArray:
		return "array"
	case BodyObject:
		return "object"
	}
	return "absent"
}

// ParsedBody is the deserialized request body of a ServerRequest.
// The zero value is absent.
type ParsedBody struct {
	shape  BodyShape
	array  Params
	object any
}

// ArrayBody returns an array-shaped body holding p.
func ArrayBody(p Params) ParsedBody {
	return ParsedBody{shape: BodyArray, array: p}
}

// NewParsedBody classifies v:
//   - nil is absent
//   - Params, maps with string keys, slices and arrays are array-shaped
//   - structs, non-nil pointers to structs, *ast.ObjectNode and
//     *ast.ArrayDataNode are object-shaped
//
// Anything else fails with ErrInvalidInput.
func NewParsedBody(v any) (ParsedBody, error) {
	switch x := v.(type) {
	case nil:
		return ParsedBody{}, nil
	case ParsedBody:
		return x, nil
	case Params:
		return ArrayBody(x), nil
	case map[string]any:
		return ArrayBody(ParamsFromMap(x)), nil
	case []any:
		return ArrayBody(paramsFromList(x)), nil
	case *ast.ObjectNode, *ast.ArrayDataNode:
		return ParsedBody{shape: BodyObject, object: x}, nil
	case ast.SchemaNode:
		return ParsedBody{}, invalidInput("WithParsedBody", "AST node %T is not an object or array", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return ArrayBody(ParamsFromMap(m)), nil
	case reflect.Slice, reflect.Array:
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return ArrayBody(paramsFromList(list)), nil
	case reflect.Struct:
		return ParsedBody{shape: BodyObject, object: v}, nil
	case reflect.Pointer:
		if !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
			return ParsedBody{shape: BodyObject, object: v}, nil
		}
	}
	return ParsedBody{}, invalidInput("WithParsedBody", "parsed body must be an array, an object or nil, got %T", v)
}

// Shape returns the body's shape.
func (b ParsedBody) Shape() BodyShape { return b.shape }

// IsAbsent reports whether no body was parsed.
func (b ParsedBody) IsAbsent() bool { return b.shape == BodyAbsent }

// Array returns the mapping of an array-shaped body.
func (b ParsedBody) Array() (Params, bool) {
	return b.array, b.shape == BodyArray
}

// Object returns the value of an object-shaped body.
func (b ParsedBody) Object() (any, bool) {
	return b.object, b.shape == BodyObject
}

// Value returns what the body was built from: Params, the object, or nil.
func (b ParsedBody) Value() any {
	switch b.shape {
	case BodyArray:
		return b.array
	case BodyObject:
		return b.object
	}
	return nil
}

// Param returns one entry of the body: a key of an array body, a property
// of an AST object, an index of an AST array, or an exported field of a
// struct (matched by name or json tag).
func (b ParsedBody) Param(key string) (any, bool) {
	switch b.shape {
	case BodyArray:
		return b.array.Get(key)
	case BodyObject:
		return objectProperty(b.object, key)
	}
	return nil, false
}

// Params flattens the body into Params. Absent bodies are empty.
func (b ParsedBody) Params() Params {
	switch b.shape {
	case BodyArray:
		return b.array
	case BodyObject:
		return objectParams(b.object)
	}
	return Params{}
}

func objectProperty(obj any, key string) (any, bool) {
	switch n := obj.(type) {
	case *ast.ObjectNode:
		prop, ok := n.Properties()[key]
		if !ok {
			return nil, false
		}
		return NodeToValue(prop), true
	case *ast.ArrayDataNode:
		i, err := strconv.Atoi(key)
		elems := n.Elements()
		if err != nil || i < 0 || i >= len(elems) {
			return nil, false
		}
		return NodeToValue(elems[i]), true
	}

	rv := reflect.Indirect(reflect.ValueOf(obj))
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.IsExported() && fieldKey(f) == key {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func objectParams(obj any) Params {
	switch n := obj.(type) {
	case *ast.ObjectNode:
		props := n.Properties()
		keys := sortedKeys(n)
		pairs := make([]Param, len(keys))
		for i, k := range keys {
			pairs[i] = Param{Key: k, Value: NodeToValue(props[k])}
		}
		return NewParams(pairs...)
	case *ast.ArrayDataNode:
		list := make([]any, len(n.Elements()))
		for i, e := range n.Elements() {
			list[i] = NodeToValue(e)
		}
		return paramsFromList(list)
	}

	rv := reflect.Indirect(reflect.ValueOf(obj))
	if rv.Kind() != reflect.Struct {
		return Params{}
	}
	rt := rv.Type()
	var pairs []Param
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || fieldKey(f) == "-" {
			continue
		}
		pairs = append(pairs, Param{Key: fieldKey(f), Value: rv.Field(i).Interface()})
	}
	return NewParams(pairs...)
}

// fieldKey is the json tag name of f, or its Go name.
func fieldKey(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("json"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	return f.Name
}
