package http

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewUploadedFile(t *testing.T) {
	f, err := NewUploadedFile(NewMemoryStream("data"), 4, UploadOK,
		ClientFilename("photo.png"), ClientMediaType("image/png"))
	if err != nil {
		t.Fatal(err)
	}
	if f.State() != UploadActive {
		t.Errorf("State() = %v, want active", f.State())
	}
	if f.Size() != 4 || f.Code() != UploadOK {
		t.Errorf("Size()/Code() = %d/%d", f.Size(), f.Code())
	}
	if name, ok := f.ClientFilename(); !ok || name != "photo.png" {
		t.Errorf("ClientFilename() = %q, %v", name, ok)
	}
	if mt, ok := f.ClientMediaType(); !ok || mt != "image/png" {
		t.Errorf("ClientMediaType() = %q, %v", mt, ok)
	}

	bare, _ := NewUploadedFile(NewMemoryStream(""), 0, UploadOK)
	if _, ok := bare.ClientFilename(); ok {
		t.Error("ClientFilename() should be absent")
	}
}

func TestNewUploadedFile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		stream *Stream
		size   int64
		code   UploadError
	}{
		{"unknown code 5", NewMemoryStream(""), 0, 5},
		{"unknown code 9", NewMemoryStream(""), 0, 9},
		{"negative size", NewMemoryStream(""), -1, UploadOK},
		{"ok without stream", nil, 0, UploadOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewUploadedFile(tt.stream, tt.size, tt.code); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("NewUploadedFile() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestUploadedFile_Errored(t *testing.T) {
	for _, code := range []UploadError{UploadErrIniSize, UploadErrFormSize, UploadErrPartial, UploadErrNoFile, UploadErrNoTmpDir, UploadErrCantWrite, UploadErrExtension} {
		f, err := NewUploadedFile(NewMemoryStream("x"), 1, code)
		if err != nil {
			t.Fatalf("NewUploadedFile(%d) error = %v", code, err)
		}
		if f.State() != UploadErrored {
			t.Errorf("code %d: State() = %v, want errored", code, f.State())
		}
		if _, err := f.Stream(); !errors.Is(err, ErrState) {
			t.Errorf("code %d: Stream() error = %v, want ErrState", code, err)
		} else if !strings.Contains(err.Error(), "upload error") {
			t.Errorf("code %d: Stream() error = %q", code, err)
		}
		if err := f.MoveTo(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrState) {
			t.Errorf("code %d: MoveTo() error = %v, want ErrState", code, err)
		}
	}
}

func TestUploadedFile_MoveTo(t *testing.T) {
	src := NewMemoryStream("uploaded content")
	// Leave the source mid-way; MoveTo rewinds.
	if _, err := src.Read(make([]byte, 5)); err != nil {
		t.Fatal(err)
	}

	f, err := NewUploadedFile(src, 16, UploadOK, UploadChunkSize(4))
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(t.TempDir(), "moved.txt")

	if err := f.MoveTo(target); err != nil {
		t.Fatalf("MoveTo() error = %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "uploaded content" {
		t.Errorf("moved content = %q, want %q", got, "uploaded content")
	}
	if f.State() != UploadMoved {
		t.Errorf("State() = %v, want moved", f.State())
	}

	if err := f.MoveTo(target + "2"); !errors.Is(err, ErrState) {
		t.Errorf("second MoveTo() error = %v, want ErrState", err)
	}
	if _, err := f.Stream(); !errors.Is(err, ErrState) {
		t.Errorf("Stream() after move error = %v, want ErrState", err)
	} else if !strings.Contains(err.Error(), "already been moved") {
		t.Errorf("Stream() after move error = %q", err)
	}
	if _, err := src.Read(make([]byte, 1)); !errors.Is(err, ErrState) {
		t.Errorf("source Read() after move error = %v, want ErrState", err)
	}
}

func TestUploadedFile_MoveToInvalidPath(t *testing.T) {
	f, _ := NewUploadedFile(NewMemoryStream("x"), 1, UploadOK)

	if err := f.MoveTo(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("MoveTo(\"\") error = %v, want ErrInvalidInput", err)
	}
	missingDir := filepath.Join(t.TempDir(), "no", "such", "dir", "file")
	if err := f.MoveTo(missingDir); !errors.Is(err, ErrResource) {
		t.Errorf("MoveTo(missing dir) error = %v, want ErrResource", err)
	}
	if f.State() != UploadActive {
		t.Errorf("failed MoveTo changed state to %v", f.State())
	}
}

func TestUploadedFile_MoveToNonSeekable(t *testing.T) {
	src, err := NewStream(bytes.NewBufferString("abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Read(make([]byte, 2)); err != nil {
		t.Fatal(err)
	}
	f, _ := NewUploadedFile(src, 6, UploadOK)

	dst := NewMemoryStream("")
	n, err := f.MoveToStream(dst)
	if err != nil {
		t.Fatal(err)
	}
	// No rewind: only the unread remainder is copied.
	if n != 4 || dst.String() != "cdef" {
		t.Errorf("MoveToStream() = %d, %q, want 4, %q", n, dst.String(), "cdef")
	}
}

// shortWriter accepts at most limit bytes per call without reporting an error.
type shortWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.buf.Write(p)
}

func TestUploadedFile_ShortWriteStopsCopy(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	f, _ := NewUploadedFile(NewMemoryStream("0123456789"), 10, UploadOK,
		UploadChunkSize(4), UploadLogger(logger))

	w := &shortWriter{limit: 2}
	dst, err := NewStream(w)
	if err != nil {
		t.Fatal(err)
	}

	n, err := f.MoveToStream(dst)
	if err != nil {
		t.Fatalf("MoveToStream() error = %v", err)
	}
	if n != 2 || w.buf.String() != "01" {
		t.Errorf("copied %d bytes %q, want 2 bytes %q", n, w.buf.String(), "01")
	}
	if f.State() != UploadMoved {
		t.Errorf("State() = %v, want moved", f.State())
	}
	if !strings.Contains(logs.String(), "Short write") {
		t.Errorf("expected a short write warning, logs = %s", logs.String())
	}
}

func TestUploadedFile_MoveToStreamNotWritable(t *testing.T) {
	f, _ := NewUploadedFile(NewMemoryStream("x"), 1, UploadOK)
	ro, _ := NewStream(strings.NewReader(""))
	if _, err := f.MoveToStream(ro); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("MoveToStream(read-only) error = %v, want ErrInvalidInput", err)
	}
}

func TestUploadError_String(t *testing.T) {
	if UploadErrNoFile.String() != "no file was uploaded" {
		t.Errorf("String() = %q", UploadErrNoFile.String())
	}
	if UploadError(5).Valid() {
		t.Error("code 5 should be invalid")
	}
	if UploadError(5).String() != "unknown upload error" {
		t.Errorf("String() = %q", UploadError(5).String())
	}
}

func TestUploadedFile_MoveToStalledSource(t *testing.T) {
	src, err := NewStream(&stallReader{data: []string{"up", "load"}, stalls: 3})
	if err != nil {
		t.Fatal(err)
	}
	f, _ := NewUploadedFile(src, 6, UploadOK)

	dst := NewMemoryStream("")
	n, err := f.MoveToStream(dst)
	if err != nil {
		t.Fatalf("MoveToStream() error = %v", err)
	}
	if n != 6 || dst.String() != "upload" {
		t.Errorf("MoveToStream() = %d, %q, want 6, %q", n, dst.String(), "upload")
	}

	stuck, _ := NewStream(&stallReader{data: []string{"x"}, stalls: 1 << 20})
	f2, _ := NewUploadedFile(stuck, 1, UploadOK)
	if _, err := f2.MoveToStream(NewMemoryStream("")); !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("MoveToStream(stalled) error = %v, want io.ErrNoProgress", err)
	}
}
