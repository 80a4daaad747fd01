// Package http implements an immutable HTTP message model: requests,
// responses, server-side requests, their headers, bodies, URIs and uploaded
// files.
//
// Every With method returns a new value and leaves the receiver untouched.
// Headers and URIs are immutable values and are shared freely between a
// message and the messages derived from it. The body *Stream is shared by
// reference until a With method replaces it; see Stream for its ownership
// rules.
//
// Example:
//
//	req, err := http.NewRequest("GET", http.MustURI("http://example.com/a?b=c"), nil, nil, "")
//	if err != nil {
//	    return err
//	}
//	req.HeaderLine("Host") // "example.com"
//	req.RequestTarget()    // "/a?b=c"
//
//	req2, err := req.WithHeader("Accept", "application/json")
//	// req is unchanged
package http

import "strings"

// DefaultProtocolVersion is used when a constructor is given "".
const DefaultProtocolVersion = "1.1"

// HeaderedBody is the read side shared by requests and responses.
type HeaderedBody interface {
	ProtocolVersion() string
	Headers() []Field
	HeaderBag() Headers
	Header(name string) []string
	HeaderLine(name string) string
	HasHeader(name string) bool
	Body() *Stream
}

// RequestLike is implemented by *Request and *ServerRequest.
type RequestLike interface {
	HeaderedBody
	Method() string
	URI() *URI
	RequestTarget() string
}

var (
	_ RequestLike  = (*Request)(nil)
	_ RequestLike  = (*ServerRequest)(nil)
	_ HeaderedBody = (*Response)(nil)
)

// message holds the fields common to every message type. It is embedded by
// value, so copying the outer struct copies it.
type message struct {
	protocol string
	headers  Headers
	body     *Stream
}

func newMessage(op string, fields []Field, body *Stream, version string) (message, error) {
	if version == "" {
		version = DefaultProtocolVersion
	}
	if !validProtocolVersion(version) {
		return message{}, invalidInput(op, "invalid protocol version %q", version)
	}
	h, err := NewHeaders(fields...)
	if err != nil {
		return message{}, err
	}
	if body == nil {
		body = NewMemoryStream("")
	}
	return message{protocol: version, headers: h, body: body}, nil
}

// validProtocolVersion accepts versions such as "1.0", "1.1", "2" and "3".
func validProtocolVersion(v string) bool {
	if v == "" || strings.HasPrefix(v, ".") || strings.HasSuffix(v, ".") {
		return false
	}
	for i := 0; i < len(v); i++ {
		if (v[i] < '0' || v[i] > '9') && v[i] != '.' {
			return false
		}
	}
	return !strings.Contains(v, "..")
}

// ProtocolVersion returns the HTTP version, e.g. "1.1".
func (m message) ProtocolVersion() string { return m.protocol }

// Headers returns every header field in order, under its original casing.
func (m message) Headers() []Field { return m.headers.All() }

// HeaderBag returns the underlying immutable header set.
func (m message) HeaderBag() Headers { return m.headers }

// Header returns the values of name (case-insensitive), or nil.
func (m message) Header(name string) []string { return m.headers.Get(name) }

// HeaderLine returns the values of name joined with ", ", or "".
func (m message) HeaderLine(name string) string { return m.headers.Line(name) }

// HasHeader reports whether name is present (case-insensitive).
func (m message) HasHeader(name string) bool { return m.headers.Has(name) }

// Body returns the body stream. It is never nil.
func (m message) Body() *Stream { return m.body }

func (m message) withProtocolVersion(version string) (message, error) {
	if !validProtocolVersion(version) {
		return m, invalidInput("WithProtocolVersion", "invalid protocol version %q", version)
	}
	m.protocol = version
	return m, nil
}

func (m message) withHeader(name string, value any) (message, error) {
	vals, err := headerValues("WithHeader", name, value)
	if err != nil {
		return m, err
	}
	m.headers = m.headers.replace(name, vals, false)
	return m, nil
}

func (m message) withAddedHeader(name string, value any) (message, error) {
	vals, err := headerValues("WithAddedHeader", name, value)
	if err != nil {
		return m, err
	}
	m.headers = m.headers.appendValues(name, vals)
	return m, nil
}

func (m message) withoutHeader(name string) message {
	m.headers = m.headers.Remove(name)
	return m
}

func (m message) withBody(body *Stream) (message, error) {
	if body == nil {
		return m, invalidInput("WithBody", "body is nil")
	}
	m.body = body
	return m, nil
}
