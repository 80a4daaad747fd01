// Package membuf provides a seekable, growable in-memory byte buffer.
//
// Buffer behaves like a small file: reads and writes happen at the current
// offset, writes past the end grow the buffer, and Seek may move the offset
// anywhere at or after zero. It is not safe for concurrent use.
package membuf

import (
	"errors"
	"io"
)

var (
	// ErrClosed is returned by operations on a closed Buffer.
	ErrClosed = errors.New("membuf: buffer is closed")
	// ErrNegativeOffset is returned when a seek lands before the start.
	ErrNegativeOffset = errors.New("membuf: negative offset")
	// ErrInvalidWhence is returned for an unknown whence value.
	ErrInvalidWhence = errors.New("membuf: invalid whence")
)

// Buffer is an in-memory io.ReadWriteSeeker.
type Buffer struct {
	data   []byte
	off    int64
	closed bool
}

// New returns a Buffer holding a copy of content, positioned at offset 0.
func New(content []byte) *Buffer {
	b := &Buffer{}
	if len(content) > 0 {
		b.data = append([]byte(nil), content...)
	}
	return b
}

// Read implements io.Reader.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if b.off >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[b.off:])
	b.off += int64(n)
	return n, nil
}

// Write implements io.Writer. Data is written at the current offset,
// overwriting and extending as needed.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	end := b.off + int64(len(p))
	if oldLen := int64(len(b.data)); end > oldLen {
		if end > int64(cap(b.data)) {
			grown := make([]byte, end, growCap(cap(b.data), end))
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
		// A gap left by seeking past the end reads back as zeros.
		if b.off > oldLen {
			clear(b.data[oldLen:b.off])
		}
	}
	copy(b.data[b.off:end], p)
	b.off = end
	return len(p), nil
}

func growCap(current int, need int64) int64 {
	c := int64(current) * 2
	if c < 64 {
		c = 64
	}
	for c < need {
		c *= 2
	}
	return c
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	if b.closed {
		return 0, ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, ErrInvalidWhence
	}
	if abs < 0 {
		return 0, ErrNegativeOffset
	}
	b.off = abs
	return abs, nil
}

// Size returns the total number of bytes held.
func (b *Buffer) Size() int64 {
	return int64(len(b.data))
}

// Bytes returns the buffer content. The slice aliases the buffer and is only
// valid until the next write.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Truncate discards everything past n bytes. The offset is not moved.
func (b *Buffer) Truncate(n int64) error {
	if b.closed {
		return ErrClosed
	}
	if n < 0 {
		return ErrNegativeOffset
	}
	if n < int64(len(b.data)) {
		b.data = b.data[:n]
	}
	return nil
}

// Close releases the buffer memory. Closing twice is a no-op.
func (b *Buffer) Close() error {
	b.closed = true
	b.data = nil
	return nil
}
