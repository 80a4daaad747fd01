package http

import "strconv"

// appendHead serializes the start line and header block of msg, including
// the blank line. bodyLen is the body length to advertise, or -1 if unknown.
func appendHead(buf []byte, msg HeaderedBody, bodyLen int64) ([]byte, error) {
	version := "HTTP/" + msg.ProtocolVersion()

	switch m := msg.(type) {
	case RequestLike:
		if m.Method() == "" {
			return nil, invalidInput("Marshal", "request method is empty")
		}
		buf = appendRequestLine(buf, m, version)
	case *Response:
		buf = appendStatusLine(buf, m, version)
	default:
		return nil, invalidInput("Marshal", "unsupported message type %T (expected *Request, *ServerRequest or *Response)", msg)
	}

	headers := msg.HeaderBag()
	buf = appendHeaders(buf, headers)

	// Auto-set Content-Length if body present and header absent
	if bodyLen > 0 && !hasFraming(headers) {
		buf = append(buf, "Content-Length: "...)
		buf = strconv.AppendInt(buf, bodyLen, 10)
		buf = appendCRLF(buf)
	}

	return appendCRLF(buf), nil // empty line before body
}

// appendCRLF appends \r\n to buf.
func appendCRLF(buf []byte) []byte {
	return append(buf, '\r', '\n')
}

// appendRequestLine appends "METHOD TARGET VERSION\r\n" to buf.
func appendRequestLine(buf []byte, r RequestLike, version string) []byte {
	buf = append(buf, r.Method()...)
	buf = append(buf, ' ')
	buf = append(buf, r.RequestTarget()...)
	buf = append(buf, ' ')
	buf = append(buf, version...)
	return appendCRLF(buf)
}

// appendStatusLine appends "VERSION STATUS REASON\r\n" to buf. An empty
// reason keeps the separating space.
func appendStatusLine(buf []byte, r *Response, version string) []byte {
	buf = append(buf, version...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(r.StatusCode()), 10)
	buf = append(buf, ' ')
	buf = append(buf, r.ReasonPhrase()...)
	return appendCRLF(buf)
}

// appendHeaders appends all headers in "Key: Value\r\n" format, one line per
// value.
func appendHeaders(buf []byte, headers Headers) []byte {
	for _, h := range headers.Pairs() {
		buf = append(buf, h.Key...)
		buf = append(buf, ':', ' ')
		buf = append(buf, h.Value...)
		buf = appendCRLF(buf)
	}
	return buf
}

// hasFraming reports whether headers delimit the body themselves.
func hasFraming(headers Headers) bool {
	return headers.Has("Content-Length") || headers.IsChunked()
}

// readBody returns the whole body, rewinding it first when seekable.
func readBody(body *Stream) ([]byte, error) {
	if body.IsSeekable() {
		if err := body.Rewind(); err != nil {
			return nil, err
		}
	}
	s, err := body.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
