package http

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Factory creates messages, streams and uploaded files from primitive
// arguments using one Config. It replaces ambient temp storage: every temp
// stream it makes lives in memory up to Config.MemoryLimit and then in a
// file under Config.TempDir.
type Factory struct {
	cfg Config
	log zerolog.Logger
}

// NewFactory validates cfg and returns a factory. A nil cfg means
// DefaultConfig().
func NewFactory(cfg *Config) (*Factory, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.ProtocolVersion == "" {
		c.ProtocolVersion = DefaultProtocolVersion
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Factory{cfg: c, log: c.logger()}, nil
}

// Config returns the factory's configuration.
func (f *Factory) Config() Config { return f.cfg }

// NewTempStream returns an empty readable, writable, seekable temp stream.
func (f *Factory) NewTempStream() (*Stream, error) {
	res := newSpillBuffer(f.cfg.TempDir, f.cfg.MemoryLimit, f.log)
	return NewStream(res, StreamMode("w+b"), StreamURI("temp"))
}

// NewStream returns a temp stream holding content, positioned at the start.
func (f *Factory) NewStream(content string) (*Stream, error) {
	s, err := f.NewTempStream()
	if err != nil {
		return nil, err
	}
	if _, err := s.WriteString(content); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.Rewind(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// NewStreamFromFile opens name with an fopen-style mode.
func (f *Factory) NewStreamFromFile(name, mode string) (*Stream, error) {
	flag, err := openFlags(mode)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(name, flag, 0o644)
	if err != nil {
		return nil, resourceError("NewStreamFromFile", err, "the file %q cannot be opened", name)
	}
	s, err := NewStream(file, StreamMode(mode), StreamURI(name))
	if err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// openFlags maps an fopen-style mode to os.OpenFile flags.
func openFlags(mode string) (int, error) {
	read, write, err := parseMode(mode)
	if err != nil {
		return 0, invalidInput("NewStreamFromFile", "the mode %q is invalid", mode)
	}
	flag := os.O_RDONLY
	switch {
	case read && write:
		flag = os.O_RDWR
	case write:
		flag = os.O_WRONLY
	}
	switch strings.Trim(mode, "bt+")[0] {
	case 'w':
		flag |= os.O_CREATE | os.O_TRUNC
	case 'a':
		flag |= os.O_CREATE | os.O_APPEND
	case 'x':
		flag |= os.O_CREATE | os.O_EXCL
	case 'c':
		flag |= os.O_CREATE
	}
	return flag, nil
}

// NewStreamFromResource wraps an existing resource; see NewStream.
func (f *Factory) NewStreamFromResource(res any) (*Stream, error) {
	return NewStream(res)
}

// NewUploadedFile creates an uploaded file that moves in chunks of
// Config.CopyChunkSize and logs to the factory's logger. A negative size is
// taken from the stream.
func (f *Factory) NewUploadedFile(stream *Stream, size int64, code UploadError, opts ...UploadOption) (*UploadedFile, error) {
	if size < 0 {
		if stream == nil {
			return nil, invalidInput("NewUploadedFile", "size is unknown and there is no stream")
		}
		n, ok := stream.Size()
		if !ok {
			return nil, invalidInput("NewUploadedFile", "size is unknown and the stream cannot report one")
		}
		size = n
	}
	all := append([]UploadOption{UploadChunkSize(f.cfg.CopyChunkSize), UploadLogger(f.log)}, opts...)
	return NewUploadedFile(stream, size, code, all...)
}

// NewURI parses s.
func (f *Factory) NewURI(s string) (*URI, error) {
	return NewURI(s)
}

// NewRequest creates a request for uri with an empty temp body.
func (f *Factory) NewRequest(method, uri string) (*Request, error) {
	u, err := NewURI(uri)
	if err != nil {
		return nil, err
	}
	body, err := f.NewTempStream()
	if err != nil {
		return nil, err
	}
	return NewRequest(method, u, nil, body, f.cfg.ProtocolVersion)
}

// NewServerRequest creates a server request for uri with an empty temp body.
func (f *Factory) NewServerRequest(method, uri string, serverParams Params) (*ServerRequest, error) {
	u, err := NewURI(uri)
	if err != nil {
		return nil, err
	}
	body, err := f.NewTempStream()
	if err != nil {
		return nil, err
	}
	return NewServerRequest(method, u, nil, body, f.cfg.ProtocolVersion, serverParams)
}

// NewResponse creates a response with an empty temp body. An empty reason is
// looked up with StatusText.
func (f *Factory) NewResponse(code int, reason string) (*Response, error) {
	body, err := f.NewTempStream()
	if err != nil {
		return nil, err
	}
	return NewResponse(code, nil, body, f.cfg.ProtocolVersion, reason)
}
