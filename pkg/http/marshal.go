package http

import (
	"sync"
)

// Marshaler is implemented by messages that encode themselves.
type Marshaler interface {
	MarshalHTTP() ([]byte, error)
}

// bufPool pools []byte slices for the encoder fast path.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 2048)
		return &b
	},
}

// Marshal returns the HTTP/1.x wire-format encoding of msg.
//
// msg must be a *Request, *ServerRequest or *Response, or implement
// Marshaler. Headers are written in order, one line per value. The body is
// read from the start when seekable. If the body is non-empty and neither
// Content-Length nor a chunked Transfer-Encoding is set, Content-Length is
// added.
//
// Marshal uses a sync.Pool buffer internally.
func Marshal(msg HeaderedBody) ([]byte, error) {
	if msg == nil {
		return nil, invalidInput("Marshal", "message is nil")
	}

	// Check for Marshaler interface
	if m, ok := msg.(Marshaler); ok {
		return m.MarshalHTTP()
	}

	body, err := readBody(msg.Body())
	if err != nil {
		return nil, err
	}

	bp := bufPool.Get().(*[]byte)
	buf := (*bp)[:0]

	buf, err = appendHead(buf, msg, int64(len(body)))
	if err != nil {
		bufPool.Put(bp)
		return nil, err
	}
	buf = append(buf, body...)

	result := make([]byte, len(buf))
	copy(result, buf)
	*bp = buf
	bufPool.Put(bp)
	return result, nil
}
