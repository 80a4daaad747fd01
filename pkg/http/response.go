package http

// Response is an immutable HTTP response.
type Response struct {
	message
	status int
	reason string
}

// NewResponse creates a response. An empty reason is looked up with
// StatusText, a nil body is an empty memory stream and an empty version is
// "1.1". status must be in 100-599.
func NewResponse(status int, headers []Field, body *Stream, version, reason string) (*Response, error) {
	if !validStatus(status) {
		return nil, invalidInput("NewResponse", "invalid status code %d; must be between %d and %d", status, MinStatus, MaxStatus)
	}
	m, err := newMessage("NewResponse", headers, body, version)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = StatusText(status)
	}
	return &Response{message: m, status: status, reason: reason}, nil
}

func (r *Response) clone() *Response {
	c := *r
	return &c
}

// StatusCode returns the status code.
func (r *Response) StatusCode() int { return r.status }

// ReasonPhrase returns the reason phrase, possibly "".
func (r *Response) ReasonPhrase() string { return r.reason }

// WithStatus returns a copy with the given status. An empty reason is looked
// up with StatusText and stays "" for unregistered codes.
func (r *Response) WithStatus(code int, reason string) (*Response, error) {
	if !validStatus(code) {
		return nil, invalidInput("WithStatus", "invalid status code %d; must be between %d and %d", code, MinStatus, MaxStatus)
	}
	if reason == "" {
		reason = StatusText(code)
	}
	c := r.clone()
	c.status, c.reason = code, reason
	return c, nil
}

// WithProtocolVersion returns a copy with the given HTTP version.
func (r *Response) WithProtocolVersion(version string) (*Response, error) {
	m, err := r.message.withProtocolVersion(version)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithHeader returns a copy with name set to value, replacing any values.
func (r *Response) WithHeader(name string, value any) (*Response, error) {
	m, err := r.message.withHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithAddedHeader returns a copy with value appended to name.
func (r *Response) WithAddedHeader(name string, value any) (*Response, error) {
	m, err := r.message.withAddedHeader(name, value)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithoutHeader returns a copy without name.
func (r *Response) WithoutHeader(name string) *Response {
	c := r.clone()
	c.message = r.message.withoutHeader(name)
	return c
}

// WithBody returns a copy using body.
func (r *Response) WithBody(body *Stream) (*Response, error) {
	m, err := r.message.withBody(body)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}
