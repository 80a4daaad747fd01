package http

import "strconv"

// ServerRequest is an incoming request as seen by a server: a Request plus
// server parameters, query and cookie parameters, the parsed body,
// attributes and uploaded files.
//
// Server parameters are fixed at construction. Everything else is replaced
// through With methods, which return a new *ServerRequest. The Request
// mutators are redeclared here so that chaining keeps the server type.
type ServerRequest struct {
	Request
	serverParams  Params
	queryParams   Params
	cookieParams  Params
	parsedBody    ParsedBody
	attributes    Params
	uploadedFiles Params
}

// NewServerRequest creates a server request. See NewRequest for the
// defaults of uri, body and version.
func NewServerRequest(method string, uri *URI, headers []Field, body *Stream, version string, serverParams Params) (*ServerRequest, error) {
	r, err := NewRequest(method, uri, headers, body, version)
	if err != nil {
		return nil, err
	}
	return &ServerRequest{Request: *r, serverParams: serverParams}, nil
}

func (s *ServerRequest) clone() *ServerRequest {
	c := *s
	return &c
}

// derive wraps a Request derived from s.Request into a copy of s.
func (s *ServerRequest) derive(r *Request) *ServerRequest {
	c := s.clone()
	c.Request = *r
	return c
}

// ServerParams returns the server parameters given at construction.
func (s *ServerRequest) ServerParams() Params { return s.serverParams }

// ServerParam returns a server parameter, or def.
func (s *ServerRequest) ServerParam(key string, def any) any {
	return s.serverParams.Value(key, def)
}

// QueryParams returns the query parameters.
func (s *ServerRequest) QueryParams() Params { return s.queryParams }

// QueryParam returns a query parameter, or def.
func (s *ServerRequest) QueryParam(key string, def any) any {
	return s.queryParams.Value(key, def)
}

// WithQueryParams returns a copy with the query parameters replaced.
// The URI is not touched.
func (s *ServerRequest) WithQueryParams(query Params) *ServerRequest {
	c := s.clone()
	c.queryParams = query
	return c
}

// CookieParams returns the cookie parameters.
func (s *ServerRequest) CookieParams() Params { return s.cookieParams }

// HasCookie reports whether the cookie name is present.
func (s *ServerRequest) HasCookie(name string) bool {
	return s.cookieParams.Has(name)
}

// CookieParam returns a cookie value, or def.
func (s *ServerRequest) CookieParam(name string, def any) any {
	return s.cookieParams.Value(name, def)
}

// WithCookieParams returns a copy with the cookie parameters replaced.
// The Cookie header is not touched.
func (s *ServerRequest) WithCookieParams(cookies Params) *ServerRequest {
	c := s.clone()
	c.cookieParams = cookies
	return c
}

// ParsedBody returns the parsed body.
func (s *ServerRequest) ParsedBody() ParsedBody { return s.parsedBody }

// ParsedBodyParam returns one entry of the parsed body, or def.
func (s *ServerRequest) ParsedBodyParam(key string, def any) any {
	if v, ok := s.parsedBody.Param(key); ok {
		return v
	}
	return def
}

// WithParsedBody returns a copy with the given parsed body. data must be
// array-shaped, object-shaped or nil; see NewParsedBody.
func (s *ServerRequest) WithParsedBody(data any) (*ServerRequest, error) {
	body, err := NewParsedBody(data)
	if err != nil {
		return nil, err
	}
	c := s.clone()
	c.parsedBody = body
	return c, nil
}

// Param returns key from the parsed body, falling back to the query
// parameters, or def.
func (s *ServerRequest) Param(key string, def any) any {
	if v, ok := s.parsedBody.Param(key); ok {
		return v
	}
	return s.queryParams.Value(key, def)
}

// Params returns the query parameters merged with the parsed body. Body
// entries win.
func (s *ServerRequest) Params() Params {
	return s.queryParams.Merge(s.parsedBody.Params())
}

// ParamsOnly is like Params but keeps only the listed keys that exist.
func (s *ServerRequest) ParamsOnly(keys ...string) Params {
	all := s.Params()
	var pairs []Param
	for _, k := range keys {
		if v, ok := all.Get(k); ok {
			pairs = append(pairs, Param{Key: k, Value: v})
		}
	}
	return NewParams(pairs...)
}

// Attributes returns the attributes.
func (s *ServerRequest) Attributes() Params { return s.attributes }

// Attribute returns an attribute, or def.
func (s *ServerRequest) Attribute(name string, def any) any {
	return s.attributes.Value(name, def)
}

// WithAttribute returns a copy with the attribute set.
func (s *ServerRequest) WithAttribute(name string, value any) *ServerRequest {
	c := s.clone()
	c.attributes = s.attributes.With(name, value)
	return c
}

// WithoutAttribute returns a copy without the attribute. An absent
// attribute returns s itself.
func (s *ServerRequest) WithoutAttribute(name string) *ServerRequest {
	if !s.attributes.Has(name) {
		return s
	}
	c := s.clone()
	c.attributes = s.attributes.Without(name)
	return c
}

// WithAttributes returns a copy whose attributes are exactly attrs.
func (s *ServerRequest) WithAttributes(attrs Params) *ServerRequest {
	c := s.clone()
	c.attributes = attrs
	return c
}

// UploadedFiles returns the uploaded file tree.
func (s *ServerRequest) UploadedFiles() Params { return s.uploadedFiles }

// UploadedFileAt walks the uploaded file tree along keys. List indexes are
// given in decimal, e.g. UploadedFileAt("files", "0").
func (s *ServerRequest) UploadedFileAt(keys ...string) (*UploadedFile, bool) {
	var node any = s.uploadedFiles
	for _, k := range keys {
		switch n := node.(type) {
		case Params:
			v, ok := n.Get(k)
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			node = n[i]
		default:
			return nil, false
		}
	}
	f, ok := node.(*UploadedFile)
	return f, ok
}

// WithUploadedFiles returns a copy whose uploaded file tree is exactly
// files. Every leaf must be a *UploadedFile; inner nodes are Params or []any.
func (s *ServerRequest) WithUploadedFiles(files Params) (*ServerRequest, error) {
	if err := validateUploadTree(files, ""); err != nil {
		return nil, err
	}
	c := s.clone()
	c.uploadedFiles = files
	return c, nil
}

func validateUploadTree(node any, path string) error {
	switch n := node.(type) {
	case *UploadedFile:
		if n == nil {
			return invalidInput("WithUploadedFiles", "nil uploaded file at %q", path)
		}
	case Params:
		for _, kv := range n.All() {
			if err := validateUploadTree(kv.Value, path+"["+kv.Key+"]"); err != nil {
				return err
			}
		}
	case []any:
		for i, v := range n {
			if err := validateUploadTree(v, path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	default:
		return invalidInput("WithUploadedFiles", "invalid uploaded file tree: %T at %q", node, path)
	}
	return nil
}

// WithMethod returns a copy with the given method.
func (s *ServerRequest) WithMethod(method string) *ServerRequest {
	return s.derive(s.Request.WithMethod(method))
}

// WithRequestTarget returns a copy with an explicit request target.
func (s *ServerRequest) WithRequestTarget(target string) (*ServerRequest, error) {
	r, err := s.Request.WithRequestTarget(target)
	if err != nil {
		return nil, err
	}
	return s.derive(r), nil
}

// WithURI returns a copy using uri; see Request.WithURI. Passing the URI
// the request already holds returns s itself.
func (s *ServerRequest) WithURI(uri *URI, preserveHost bool) *ServerRequest {
	r := s.Request.WithURI(uri, preserveHost)
	if r == &s.Request {
		return s
	}
	return s.derive(r)
}

// WithProtocolVersion returns a copy with the given HTTP version.
func (s *ServerRequest) WithProtocolVersion(version string) (*ServerRequest, error) {
	r, err := s.Request.WithProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	return s.derive(r), nil
}

// WithHeader returns a copy with name set to value, replacing any values.
func (s *ServerRequest) WithHeader(name string, value any) (*ServerRequest, error) {
	r, err := s.Request.WithHeader(name, value)
	if err != nil {
		return nil, err
	}
	return s.derive(r), nil
}

// WithAddedHeader returns a copy with value appended to name.
func (s *ServerRequest) WithAddedHeader(name string, value any) (*ServerRequest, error) {
	r, err := s.Request.WithAddedHeader(name, value)
	if err != nil {
		return nil, err
	}
	return s.derive(r), nil
}

// WithoutHeader returns a copy without name.
func (s *ServerRequest) WithoutHeader(name string) *ServerRequest {
	return s.derive(s.Request.WithoutHeader(name))
}

// WithBody returns a copy using body.
func (s *ServerRequest) WithBody(body *Stream) (*ServerRequest, error) {
	r, err := s.Request.WithBody(body)
	if err != nil {
		return nil, err
	}
	return s.derive(r), nil
}
