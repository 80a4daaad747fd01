package http

import (
	"io"
)

// Encoder writes HTTP messages to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the head of msg and then copies its body to the stream
// without buffering it. A seekable body is rewound first. Content-Length is
// added only when the body size is known; see Marshal.
//
// A body of unknown size is written as is. For a response without
// Content-Length or chunked Transfer-Encoding that means the body ends when
// the connection closes. Requests have no such fallback, so a request whose
// body size is unknown must carry one of those headers or Encode fails with
// ErrInvalidInput before writing anything.
func (enc *Encoder) Encode(msg HeaderedBody) error {
	if msg == nil {
		return invalidInput("Encode", "message is nil")
	}
	if m, ok := msg.(Marshaler); ok {
		data, err := m.MarshalHTTP()
		if err != nil {
			return err
		}
		_, err = enc.w.Write(data)
		return err
	}

	body := msg.Body()
	bodyLen := int64(-1)
	if body.IsSeekable() {
		if err := body.Rewind(); err != nil {
			return err
		}
		if n, ok := body.Size(); ok {
			bodyLen = n
		}
	}

	if _, ok := msg.(RequestLike); ok && bodyLen < 0 && !hasFraming(msg.HeaderBag()) {
		return invalidInput("Encode", "request body has unknown length; set Content-Length or chunked Transfer-Encoding")
	}

	head, err := appendHead(make([]byte, 0, 512), msg, bodyLen)
	if err != nil {
		return err
	}
	if _, err := enc.w.Write(head); err != nil {
		return err
	}
	if bodyLen == 0 {
		return nil
	}
	if _, err := io.Copy(enc.w, body); err != nil {
		return resourceError("Encode", err, "unable to write body")
	}
	return nil
}
