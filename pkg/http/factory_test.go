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

func newTestFactory(t *testing.T, limit int64) (*Factory, string) {
	t.Helper()
	dir := t.TempDir()
	logger := zerolog.Nop()
	f, err := NewFactory(&Config{
		TempDir:       dir,
		MemoryLimit:   limit,
		CopyChunkSize: 8,
		Logger:        &logger,
	})
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	return f, dir
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestNewFactory_Defaults(t *testing.T) {
	f, err := NewFactory(nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Config().ProtocolVersion != "1.1" || f.Config().TempDir == "" {
		t.Errorf("Config() = %+v", f.Config())
	}

	if _, err := NewFactory(&Config{CopyChunkSize: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewFactory(zero chunk) error = %v, want ErrInvalidInput", err)
	}
}

func TestFactory_NewStream(t *testing.T) {
	f, _ := newTestFactory(t, 1024)

	s, err := f.NewStream("hello")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if pos, _ := s.Tell(); pos != 0 {
		t.Errorf("Tell() = %d, want 0", pos)
	}
	if got, _ := s.Contents(); got != "hello" {
		t.Errorf("Contents() = %q, want hello", got)
	}
	if size, ok := s.Size(); !ok || size != 5 {
		t.Errorf("Size() = %d, %v", size, ok)
	}
	if uri, _ := s.MetadataValue("uri"); uri != "temp" {
		t.Errorf("MetadataValue(uri) = %v, want temp", uri)
	}
}

func TestFactory_TempStreamSpills(t *testing.T) {
	f, dir := newTestFactory(t, 8)

	s, err := f.NewTempStream()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteString("12345"); err != nil {
		t.Fatal(err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Fatalf("spilled too early: %d files", n)
	}

	if _, err := s.WriteString("6789abc"); err != nil {
		t.Fatal(err)
	}
	if n := dirEntries(t, dir); n != 1 {
		t.Fatalf("expected one temp file after spill, got %d", n)
	}
	if size, _ := s.Size(); size != 12 {
		t.Errorf("Size() = %d, want 12", size)
	}
	if got := s.String(); got != "123456789abc" {
		t.Errorf("String() = %q", got)
	}

	// Overwrite in the middle after the spill.
	if _, err := s.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteString("XY"); err != nil {
		t.Fatal(err)
	}
	if got := s.String(); got != "12XY56789abc" {
		t.Errorf("String() = %q", got)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if n := dirEntries(t, dir); n != 0 {
		t.Errorf("temp file left behind after Close: %d files", n)
	}
}

func TestFactory_TempStreamSpillLogs(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.TraceLevel)
	f, err := NewFactory(&Config{TempDir: t.TempDir(), MemoryLimit: 0, CopyChunkSize: 1, Logger: &logger})
	if err != nil {
		t.Fatal(err)
	}
	s, _ := f.NewStream("x")
	defer s.Close()

	if !strings.Contains(logs.String(), "Spilled temp stream to disk") {
		t.Errorf("expected spill trace, logs = %s", logs.String())
	}
}

func TestFactory_NewStreamFromFile(t *testing.T) {
	f, dir := newTestFactory(t, 1024)
	path := filepath.Join(dir, "data.txt")

	w, err := f.NewStreamFromFile(path, "w")
	if err != nil {
		t.Fatal(err)
	}
	if w.IsReadable() || !w.IsWritable() {
		t.Error("mode w should be write-only")
	}
	if _, err := w.WriteString("file data"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	r, err := f.NewStreamFromFile(path, "rb")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if got := r.String(); got != "file data" {
		t.Errorf("String() = %q", got)
	}
	if mode, _ := r.MetadataValue("mode"); mode != "rb" {
		t.Errorf("MetadataValue(mode) = %v", mode)
	}

	if _, err := f.NewStreamFromFile(path, "z"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewStreamFromFile(mode z) error = %v, want ErrInvalidInput", err)
	}
	if _, err := f.NewStreamFromFile(path, "x"); !errors.Is(err, ErrResource) {
		t.Errorf("NewStreamFromFile(mode x on existing) error = %v, want ErrResource", err)
	}
	if _, err := f.NewStreamFromFile(filepath.Join(dir, "missing"), "r"); !errors.Is(err, ErrResource) {
		t.Errorf("NewStreamFromFile(missing) error = %v, want ErrResource", err)
	}
}

func TestFactory_NewUploadedFile(t *testing.T) {
	f, dir := newTestFactory(t, 1024)
	s, _ := f.NewStream("0123456789")

	up, err := f.NewUploadedFile(s, -1, UploadOK, ClientFilename("a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if up.Size() != 10 {
		t.Errorf("Size() = %d, want 10 from stream", up.Size())
	}
	target := filepath.Join(dir, "a.txt")
	if err := up.MoveTo(target); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(target); string(got) != "0123456789" {
		t.Errorf("moved content = %q", got)
	}

	unknown, _ := NewStream(bytes.NewBufferString("x"))
	if _, err := f.NewUploadedFile(unknown, -1, UploadOK); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewUploadedFile(unknown size) error = %v, want ErrInvalidInput", err)
	}
}

func TestFactory_Messages(t *testing.T) {
	f, _ := newTestFactory(t, 1024)

	req, err := f.NewRequest("GET", "https://example.com:8443/a?b=c")
	if err != nil {
		t.Fatal(err)
	}
	if req.HeaderLine("Host") != "example.com:8443" || req.RequestTarget() != "/a?b=c" {
		t.Errorf("request = %s %s", req.HeaderLine("Host"), req.RequestTarget())
	}

	sreq, err := f.NewServerRequest("POST", "/upload", NewParams(Param{Key: "SERVER_NAME", Value: "local"}))
	if err != nil {
		t.Fatal(err)
	}
	if sreq.ServerParam("SERVER_NAME", nil) != "local" {
		t.Error("server params lost")
	}

	resp, err := f.NewResponse(201, "")
	if err != nil {
		t.Fatal(err)
	}
	if resp.ReasonPhrase() != "Created" || resp.ProtocolVersion() != "1.1" {
		t.Errorf("response = %d %q %q", resp.StatusCode(), resp.ReasonPhrase(), resp.ProtocolVersion())
	}

	if _, err := f.NewRequest("GET", "http://bad host/"); !errors.Is(err, ErrInvalidURI) {
		t.Errorf("NewRequest(bad uri) error = %v, want ErrInvalidURI", err)
	}
	if _, err := f.NewURI("http://[::1"); !errors.Is(err, ErrInvalidURI) {
		t.Errorf("NewURI() error = %v, want ErrInvalidURI", err)
	}
}
