package http

import (
	"strconv"
	"strings"
	"unicode"
)

// Request is an immutable outgoing or client-side HTTP request.
//
// The method is any string; it is not limited to the registered methods.
// When no Host header is given, one is derived from the URI and stored as the
// first header.
type Request struct {
	message
	method    string
	uri       *URI
	target    string
	hasTarget bool
}

// NewRequest creates a request. A nil uri is the empty URI reference, a nil
// body is an empty memory stream and an empty version is "1.1".
func NewRequest(method string, uri *URI, headers []Field, body *Stream, version string) (*Request, error) {
	m, err := newMessage("NewRequest", headers, body, version)
	if err != nil {
		return nil, err
	}
	if uri == nil {
		uri = &URI{}
	}
	r := &Request{message: m, method: method, uri: uri}
	if !r.headers.Has("Host") {
		r.updateHostFromURI()
	}
	return r, nil
}

// updateHostFromURI stores "host[:port]" from the URI as the first header,
// keeping the casing of an existing Host header.
func (r *Request) updateHostFromURI() {
	host := r.uri.Host()
	if host == "" {
		return
	}
	if port, ok := r.uri.Port(); ok {
		host += ":" + strconv.Itoa(port)
	}
	name, ok := r.headers.Name("Host")
	if !ok {
		name = "Host"
	}
	r.headers = r.headers.prepend(name, []string{host})
}

func (r *Request) clone() *Request {
	c := *r
	return &c
}

// Method returns the request method as given.
func (r *Request) Method() string { return r.method }

// URI returns the request URI.
func (r *Request) URI() *URI { return r.uri }

// RequestTarget returns the target for the request line. Unless overridden
// with WithRequestTarget, it is the URI path (or "/") plus "?query".
func (r *Request) RequestTarget() string {
	if r.hasTarget {
		return r.target
	}
	target := r.uri.Path()
	if target == "" {
		target = "/"
	}
	if q := r.uri.Query(); q != "" {
		target += "?" + q
	}
	return target
}

// WithRequestTarget returns a copy with an explicit request target, e.g. "*"
// or an absolute-form URI. The target must not contain whitespace.
func (r *Request) WithRequestTarget(target string) (*Request, error) {
	if strings.IndexFunc(target, unicode.IsSpace) >= 0 {
		return nil, invalidInput("WithRequestTarget", "invalid request target %q; cannot contain whitespace", target)
	}
	c := r.clone()
	c.target, c.hasTarget = target, true
	return c, nil
}

// WithMethod returns a copy with the given method.
func (r *Request) WithMethod(method string) *Request {
	c := r.clone()
	c.method = method
	return c
}

// WithURI returns a copy using uri. Passing the URI the request already holds
// returns r itself.
//
// The Host header is recomputed from uri, unless preserveHost is true and the
// request already has a Host header. A uri without a host leaves the Host
// header alone.
func (r *Request) WithURI(uri *URI, preserveHost bool) *Request {
	if uri == r.uri {
		return r
	}
	if uri == nil {
		uri = &URI{}
	}
	c := r.clone()
	c.uri = uri
	if !preserveHost || !c.headers.Has("Host") {
		c.updateHostFromURI()
	}
	return c
}

// WithProtocolVersion returns a copy with the given HTTP version.
func (r *Request) WithProtocolVersion(version string) (*Request, error) {
	m, err := r.message.withProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithHeader returns a copy with name set to value, replacing any values.
func (r *Request) WithHeader(name string, value any) (*Request, error) {
	m, err := r.message.withHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithAddedHeader returns a copy with value appended to name.
func (r *Request) WithAddedHeader(name string, value any) (*Request, error) {
	m, err := r.message.withAddedHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithoutHeader returns a copy without name.
func (r *Request) WithoutHeader(name string) *Request {
	c := r.clone()
	c.message = r.message.withoutHeader(name)
	return c
}

// WithBody returns a copy using body. The receiver keeps its own body.
func (r *Request) WithBody(body *Stream) (*Request, error) {
	m, err := r.message.withBody(body)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}
