package http

import (
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/shapestone/shape-core/pkg/ast"
)

var zeroPos = ast.Position{}

// RequestToNode converts a Request to an AST ObjectNode with the properties
// type ("request"), method, uri, target, version, headers and body.
// The body is read from the start when seekable.
func RequestToNode(req *Request) (ast.SchemaNode, error) {
	props, err := requestProps(req, "request")
	if err != nil {
		return nil, err
	}
	return ast.NewObjectNode(props, zeroPos), nil
}

// ServerRequestToNode converts a ServerRequest to an AST ObjectNode. On top
// of the request properties it carries serverParams, queryParams,
// cookieParams, attributes, uploadedFiles and, when present, parsedBody
// with its parsedBodyShape.
func ServerRequestToNode(req *ServerRequest) (ast.SchemaNode, error) {
	props, err := requestProps(&req.Request, "serverRequest")
	if err != nil {
		return nil, err
	}
	params := map[string]Params{
		"serverParams":  req.ServerParams(),
		"queryParams":   req.QueryParams(),
		"cookieParams":  req.CookieParams(),
		"attributes":    req.Attributes(),
		"uploadedFiles": req.UploadedFiles(),
	}
	for name, p := range params {
		if props[name], err = ValueToNode(p); err != nil {
			return nil, err
		}
	}
	if body := req.ParsedBody(); !body.IsAbsent() {
		if props["parsedBody"], err = ValueToNode(body); err != nil {
			return nil, err
		}
		props["parsedBodyShape"] = ast.NewLiteralNode(body.Shape().String(), zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos), nil
}

func requestProps(req *Request, typ string) (map[string]ast.SchemaNode, error) {
	body, err := readBody(req.Body())
	if err != nil {
		return nil, err
	}
	return map[string]ast.SchemaNode{
		"type":    ast.NewLiteralNode(typ, zeroPos),
		"method":  ast.NewLiteralNode(req.Method(), zeroPos),
		"uri":     ast.NewLiteralNode(req.URI().String(), zeroPos),
		"target":  ast.NewLiteralNode(req.RequestTarget(), zeroPos),
		"version": ast.NewLiteralNode(req.ProtocolVersion(), zeroPos),
		"headers": headersToNode(req.HeaderBag()),
		"body":    ast.NewLiteralNode(string(body), zeroPos),
	}, nil
}

// ResponseToNode converts a Response to an AST ObjectNode with the
// properties type ("response"), version, statusCode, reason, headers and
// body.
func ResponseToNode(resp *Response) (ast.SchemaNode, error) {
	body, err := readBody(resp.Body())
	if err != nil {
		return nil, err
	}
	props := map[string]ast.SchemaNode{
		"type":       ast.NewLiteralNode("response", zeroPos),
		"version":    ast.NewLiteralNode(resp.ProtocolVersion(), zeroPos),
		"statusCode": ast.NewLiteralNode(int64(resp.StatusCode()), zeroPos),
		"reason":     ast.NewLiteralNode(resp.ReasonPhrase(), zeroPos),
		"headers":    headersToNode(resp.HeaderBag()),
		"body":       ast.NewLiteralNode(string(body), zeroPos),
	}
	return ast.NewObjectNode(props, zeroPos), nil
}

// NodeToRequest converts an AST ObjectNode produced by RequestToNode (or
// ServerRequestToNode) back to a Request. A target that differs from the
// one derived from the URI is kept as an explicit request target.
func NodeToRequest(node ast.SchemaNode) (*Request, error) {
	props, err := objectProps("NodeToRequest", node)
	if err != nil {
		return nil, err
	}
	fields, err := nodeToFields(props["headers"])
	if err != nil {
		return nil, err
	}
	uri, err := NewURI(stringProp(props, "uri"))
	if err != nil {
		return nil, err
	}
	req, err := NewRequest(stringProp(props, "method"), uri, fields,
		NewMemoryStream(stringProp(props, "body")), stringProp(props, "version"))
	if err != nil {
		return nil, err
	}
	if target, ok := props["target"]; ok {
		if t := literalString(target); t != "" && t != req.RequestTarget() {
			return req.WithRequestTarget(t)
		}
	}
	return req, nil
}

// NodeToServerRequest converts an AST ObjectNode produced by
// ServerRequestToNode back to a ServerRequest. Uploaded files are not
// restored; their streams cannot be represented in the tree.
func NodeToServerRequest(node ast.SchemaNode) (*ServerRequest, error) {
	req, err := NodeToRequest(node)
	if err != nil {
		return nil, err
	}
	props, _ := objectProps("NodeToServerRequest", node)

	s := &ServerRequest{
		Request:      *req,
		serverParams: nodeToParams(props["serverParams"]),
		queryParams:  nodeToParams(props["queryParams"]),
		cookieParams: nodeToParams(props["cookieParams"]),
		attributes:   nodeToParams(props["attributes"]),
	}
	body, ok := props["parsedBody"]
	if !ok {
		return s, nil
	}
	if stringProp(props, "parsedBodyShape") == BodyArray.String() {
		s.parsedBody = ArrayBody(nodeToParams(body))
		return s, nil
	}
	return s.WithParsedBody(body)
}

// NodeToResponse converts an AST ObjectNode produced by ResponseToNode back
// to a Response.
func NodeToResponse(node ast.SchemaNode) (*Response, error) {
	props, err := objectProps("NodeToResponse", node)
	if err != nil {
		return nil, err
	}
	fields, err := nodeToFields(props["headers"])
	if err != nil {
		return nil, err
	}
	return NewResponse(nodeToStatusCode(props["statusCode"]), fields,
		NewMemoryStream(stringProp(props, "body")), stringProp(props, "version"),
		stringProp(props, "reason"))
}

// ValueToNode converts a Go value to an AST node. Scalars become literals
// (integers as int64, floats as float64), slices become arrays, and maps,
// Params, structs and uploaded files become objects. Nil pointers become a
// nil literal. AST nodes are returned unchanged. Unsigned values above
// math.MaxInt64 fail with ErrInvalidInput.
func ValueToNode(v any) (ast.SchemaNode, error) {
	switch val := v.(type) {
	case nil:
		return ast.NewLiteralNode(nil, zeroPos), nil
	case ast.SchemaNode:
		return val, nil
	case string, bool, int64, float64:
		return ast.NewLiteralNode(val, zeroPos), nil
	case int:
		return ast.NewLiteralNode(int64(val), zeroPos), nil
	case float32:
		return ast.NewLiteralNode(float64(val), zeroPos), nil
	case Params:
		return paramsToNode(val)
	case ParsedBody:
		if val.Shape() == BodyObject {
			return ValueToNode(val.Value())
		}
		return paramsToNode(val.Params())
	case *UploadedFile:
		if val == nil {
			return ast.NewLiteralNode(nil, zeroPos), nil
		}
		return uploadToNode(val), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return ast.NewLiteralNode(rv.Int(), zeroPos), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return nil, invalidInput("ValueToNode", "value %d of type %T overflows int64", n, v)
		}
		return ast.NewLiteralNode(int64(n), zeroPos), nil
	case reflect.Float32, reflect.Float64:
		return ast.NewLiteralNode(rv.Float(), zeroPos), nil
	case reflect.Bool:
		return ast.NewLiteralNode(rv.Bool(), zeroPos), nil
	case reflect.String:
		return ast.NewLiteralNode(rv.String(), zeroPos), nil
	case reflect.Slice, reflect.Array:
		elems := make([]ast.SchemaNode, rv.Len())
		for i := range elems {
			n, err := ValueToNode(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elems[i] = n
		}
		return ast.NewArrayDataNode(elems, zeroPos), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		props := make(map[string]ast.SchemaNode, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n, err := ValueToNode(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			props[iter.Key().String()] = n
		}
		return ast.NewObjectNode(props, zeroPos), nil
	case reflect.Struct:
		return paramsToNode(objectParams(v))
	case reflect.Pointer:
		if rv.IsNil() {
			return ast.NewLiteralNode(nil, zeroPos), nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return paramsToNode(objectParams(v))
		}
	}
	return nil, invalidInput("ValueToNode", "unsupported type %T", v)
}

// NodeToValue converts an AST node to native Go types: literals yield their
// value, arrays []any and objects map[string]any.
func NodeToValue(node ast.SchemaNode) any {
	switch n := node.(type) {
	case *ast.LiteralNode:
		return n.Value()
	case *ast.ArrayDataNode:
		elements := n.Elements()
		arr := make([]any, len(elements))
		for i, elem := range elements {
			arr[i] = NodeToValue(elem)
		}
		return arr
	case *ast.ObjectNode:
		props := n.Properties()
		m := make(map[string]any, len(props))
		for k, v := range props {
			m[k] = NodeToValue(v)
		}
		return m
	default:
		return nil
	}
}

func paramsToNode(p Params) (ast.SchemaNode, error) {
	props := make(map[string]ast.SchemaNode, p.Len())
	for _, kv := range p.All() {
		n, err := ValueToNode(kv.Value)
		if err != nil {
			return nil, err
		}
		props[kv.Key] = n
	}
	return ast.NewObjectNode(props, zeroPos), nil
}

// nodeToParams converts an object node to Params with keys sorted; nested
// objects stay map[string]any. Anything else yields empty Params.
func nodeToParams(node ast.SchemaNode) Params {
	m, ok := NodeToValue(node).(map[string]any)
	if !ok {
		return Params{}
	}
	return ParamsFromMap(m)
}

func uploadToNode(f *UploadedFile) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"size":  ast.NewLiteralNode(f.Size(), zeroPos),
		"error": ast.NewLiteralNode(int64(f.Code()), zeroPos),
		"state": ast.NewLiteralNode(f.State().String(), zeroPos),
	}
	if name, ok := f.ClientFilename(); ok {
		props["clientFilename"] = ast.NewLiteralNode(name, zeroPos)
	}
	if mt, ok := f.ClientMediaType(); ok {
		props["clientMediaType"] = ast.NewLiteralNode(mt, zeroPos)
	}
	return ast.NewObjectNode(props, zeroPos)
}

// headersToNode emits one {key, value} object per header line.
func headersToNode(headers Headers) ast.SchemaNode {
	pairs := headers.Pairs()
	elements := make([]ast.SchemaNode, len(pairs))
	for i, h := range pairs {
		elements[i] = ast.NewObjectNode(map[string]ast.SchemaNode{
			"key":   ast.NewLiteralNode(h.Key, zeroPos),
			"value": ast.NewLiteralNode(h.Value, zeroPos),
		}, zeroPos)
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

// nodeToFields converts an AST headers array to fields. A missing node
// means no headers.
func nodeToFields(node ast.SchemaNode) ([]Field, error) {
	if node == nil {
		return nil, nil
	}
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, invalidInput("NodeToRequest", "expected ArrayDataNode for headers, got %T", node)
	}
	elements := arr.Elements()
	fields := make([]Field, 0, len(elements))
	for _, elem := range elements {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			continue
		}
		props := obj.Properties()
		fields = append(fields, Field{
			Name:   stringProp(props, "key"),
			Values: []string{stringProp(props, "value")},
		})
	}
	return fields, nil
}

func objectProps(op string, node ast.SchemaNode) (map[string]ast.SchemaNode, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return nil, invalidInput(op, "expected ObjectNode, got %T", node)
	}
	return obj.Properties(), nil
}

func stringProp(props map[string]ast.SchemaNode, key string) string {
	return literalString(props[key])
}

func literalString(node ast.SchemaNode) string {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return ""
	}
	s, _ := lit.Value().(string)
	return s
}

// nodeToStatusCode extracts the status code from a literal node.
func nodeToStatusCode(node ast.SchemaNode) int {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return 0
	}
	switch code := lit.Value().(type) {
	case int64:
		return int(code)
	case float64:
		return int(code)
	case string:
		n, _ := strconv.Atoi(code)
		return n
	}
	return 0
}

// sortedKeys returns the keys of an object node in order.
func sortedKeys(node *ast.ObjectNode) []string {
	props := node.Properties()
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
