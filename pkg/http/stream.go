package http

import (
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/shapestone/shape-httpmsg/internal/membuf"
)

// Stream is a byte stream used as a message body or uploaded file content.
//
// A Stream owns its underlying resource. The resource may be anything
// implementing some of io.Reader, io.Writer, io.Seeker and io.Closer; the
// stream's capabilities follow from what the resource implements, narrowed
// by an optional fopen-style mode.
//
// A Stream is open until Close (resource released) or Detach (resource
// handed back to the caller, not closed). Afterwards every I/O operation
// fails with ErrState.
//
// A Stream is not safe for concurrent use. Messages derived from one another
// share the same body Stream until one of them replaces it.
type Stream struct {
	res      any
	size     int64
	sizeOK   bool
	readable bool
	writable bool
	seekable bool
	eof      bool
	closed   bool
	detached bool
	pos      int64 // tracked for non-seekable resources
	mode     string
	uri      string
}

// StreamOption configures a Stream created by NewStream.
type StreamOption func(*Stream)

// StreamMode narrows the stream's capabilities with an fopen-style mode:
// "r" is read-only, "w", "a", "x" and "c" are write-only and a "+" makes
// either read-write. "b" and "t" are ignored.
func StreamMode(mode string) StreamOption {
	return func(s *Stream) {
		s.mode = mode
	}
}

// StreamSize records a known size for resources that cannot report one.
func StreamSize(n int64) StreamOption {
	return func(s *Stream) {
		s.size, s.sizeOK = n, true
	}
}

// StreamURI records where the resource came from, reported by Metadata.
func StreamURI(uri string) StreamOption {
	return func(s *Stream) {
		s.uri = uri
	}
}

// NewStream wraps res. res must implement io.Reader or io.Writer.
func NewStream(res any, opts ...StreamOption) (*Stream, error) {
	if res == nil {
		return nil, invalidInput("NewStream", "resource is nil")
	}
	s := &Stream{res: res}
	for _, opt := range opts {
		opt(s)
	}

	_, canRead := res.(io.Reader)
	_, canWrite := res.(io.Writer)
	if s.mode != "" {
		r, w, err := parseMode(s.mode)
		if err != nil {
			return nil, err
		}
		canRead = canRead && r
		canWrite = canWrite && w
	}
	if !canRead && !canWrite {
		return nil, invalidInput("NewStream", "resource of type %T is neither readable nor writable", res)
	}
	s.readable, s.writable = canRead, canWrite

	if seeker, ok := res.(io.Seeker); ok {
		// Pipes and sockets implement Seek but fail it.
		if off, err := seeker.Seek(0, io.SeekCurrent); err == nil {
			s.seekable = true
			s.pos = off
		}
	}
	return s, nil
}

// NewMemoryStream returns a readable, writable, seekable stream backed by
// memory and holding content, positioned at the start.
func NewMemoryStream(content string) *Stream {
	return &Stream{
		res:      membuf.New([]byte(content)),
		readable: true,
		writable: true,
		seekable: true,
		mode:     "w+b",
		uri:      "memory",
	}
}

// parseMode reports the read and write capability of an fopen-style mode.
func parseMode(mode string) (read, write bool, err error) {
	m := strings.NewReplacer("b", "", "t", "").Replace(mode)
	if m == "" {
		return false, false, invalidInput("NewStream", "the mode %q is invalid", mode)
	}
	plus := strings.HasSuffix(m, "+")
	switch strings.TrimSuffix(m, "+") {
	case "r":
		return true, plus, nil
	case "w", "a", "x", "c":
		return plus, true, nil
	}
	return false, false, invalidInput("NewStream", "the mode %q is invalid", mode)
}

func (s *Stream) check(op string) error {
	switch {
	case s.detached:
		return stateError(op, "stream is detached")
	case s.closed:
		return stateError(op, "stream is closed")
	}
	return nil
}

// IsReadable reports whether Read can succeed.
func (s *Stream) IsReadable() bool {
	return s.check("") == nil && s.readable
}

// IsWritable reports whether Write can succeed.
func (s *Stream) IsWritable() bool {
	return s.check("") == nil && s.writable
}

// IsSeekable reports whether Seek can succeed.
func (s *Stream) IsSeekable() bool {
	return s.check("") == nil && s.seekable
}

// Read reads up to len(p) bytes. It returns io.EOF at end of stream.
func (s *Stream) Read(p []byte) (int, error) {
	if err := s.check("Read"); err != nil {
		return 0, err
	}
	if !s.readable {
		return 0, stateError("Read", "stream is not readable")
	}
	n, err := s.res.(io.Reader).Read(p)
	s.pos += int64(n)
	if errors.Is(err, io.EOF) {
		s.eof = true
		return n, io.EOF
	}
	if err != nil {
		return n, resourceError("Read", err, "unable to read from stream")
	}
	return n, nil
}

// Write writes p and returns the number of bytes written.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.check("Write"); err != nil {
		return 0, err
	}
	if !s.writable {
		return 0, stateError("Write", "stream is not writable")
	}
	s.sizeOK = false
	n, err := s.res.(io.Writer).Write(p)
	s.pos += int64(n)
	if err != nil {
		return n, resourceError("Write", err, "unable to write to stream")
	}
	return n, nil
}

// WriteString writes str.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Seek moves the read/write position.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if err := s.check("Seek"); err != nil {
		return 0, err
	}
	if !s.seekable {
		return 0, stateError("Seek", "stream is not seekable")
	}
	off, err := s.res.(io.Seeker).Seek(offset, whence)
	if err != nil {
		return 0, resourceError("Seek", err, "unable to seek to offset %d with whence %d", offset, whence)
	}
	s.eof = false
	s.pos = off
	return off, nil
}

// Rewind seeks to the start of the stream.
func (s *Stream) Rewind() error {
	_, err := s.Seek(0, io.SeekStart)
	return err
}

// Tell returns the current position.
func (s *Stream) Tell() (int64, error) {
	if err := s.check("Tell"); err != nil {
		return 0, err
	}
	if s.seekable {
		off, err := s.res.(io.Seeker).Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, resourceError("Tell", err, "unable to determine stream position")
		}
		return off, nil
	}
	return s.pos, nil
}

// EOF reports whether a read has hit the end of the stream. Closed and
// detached streams are always at EOF.
func (s *Stream) EOF() bool {
	if s.check("") != nil {
		return true
	}
	return s.eof
}

// Size returns the size of the stream, if known.
func (s *Stream) Size() (int64, bool) {
	if s.check("") != nil {
		return 0, false
	}
	if s.sizeOK {
		return s.size, true
	}
	switch r := s.res.(type) {
	case interface{ Stat() (fs.FileInfo, error) }:
		fi, err := r.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return 0, false
		}
		s.size, s.sizeOK = fi.Size(), true
	case interface{ Size() int64 }:
		s.size, s.sizeOK = r.Size(), true
	default:
		return 0, false
	}
	return s.size, true
}

// Contents returns the remaining bytes from the current position.
func (s *Stream) Contents() (string, error) {
	if err := s.check("Contents"); err != nil {
		return "", err
	}
	if !s.readable {
		return "", stateError("Contents", "stream is not readable")
	}
	var sb strings.Builder
	buf := make([]byte, 32*1024)
	empty := 0
	for {
		n, err := s.Read(buf)
		sb.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		if err := s.progress(&empty, n, "Contents"); err != nil {
			return sb.String(), err
		}
	}
}

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

// progress counts consecutive empty reads in *empty and fails with
// io.ErrNoProgress once maxEmptyReads is reached.
func (s *Stream) progress(empty *int, n int, op string) error {
	if n > 0 {
		*empty = 0
		return nil
	}
	*empty++
	if *empty >= maxEmptyReads {
		return resourceError(op, io.ErrNoProgress, "stream made no progress")
	}
	return nil
}

// String rewinds the stream if it is seekable and returns its whole content.
// Errors yield an empty string.
func (s *Stream) String() string {
	if s.IsSeekable() {
		if err := s.Rewind(); err != nil {
			return ""
		}
	}
	out, err := s.Contents()
	if err != nil {
		return ""
	}
	return out
}

// Close releases the resource. Closing twice, or closing a detached
// stream, is a no-op.
func (s *Stream) Close() error {
	if s.closed || s.detached {
		return nil
	}
	s.closed = true
	res := s.res
	s.res = nil
	s.sizeOK = false
	if c, ok := res.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return resourceError("Close", err, "unable to close stream")
		}
	}
	return nil
}

// Detach hands the resource back to the caller without closing it. The
// stream is unusable afterwards. Detaching a closed or already detached
// stream returns nil.
func (s *Stream) Detach() any {
	if s.closed || s.detached {
		return nil
	}
	res := s.res
	s.res = nil
	s.detached = true
	s.sizeOK = false
	s.readable, s.writable, s.seekable = false, false, false
	return res
}

// Metadata describes the stream: "uri", "mode" and "seekable".
// A closed or detached stream has no metadata.
func (s *Stream) Metadata() map[string]any {
	if s.check("") != nil {
		return nil
	}
	return map[string]any{
		"uri":      s.uri,
		"mode":     s.mode,
		"seekable": s.seekable,
	}
}

// MetadataValue returns a single metadata entry.
func (s *Stream) MetadataValue(key string) (any, bool) {
	v, ok := s.Metadata()[key]
	return v, ok
}
