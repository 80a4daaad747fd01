package http

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// UploadError is the result code of a file upload.
type UploadError int

// Upload result codes. 5 is unassigned.
const (
	UploadOK           UploadError = 0
	UploadErrIniSize   UploadError = 1
	UploadErrFormSize  UploadError = 2
	UploadErrPartial   UploadError = 3
	UploadErrNoFile    UploadError = 4
	UploadErrNoTmpDir  UploadError = 6
	UploadErrCantWrite UploadError = 7
	UploadErrExtension UploadError = 8
)

var uploadErrorText = map[UploadError]string{
	UploadOK:           "upload succeeded",
	UploadErrIniSize:   "file exceeds the server's maximum upload size",
	UploadErrFormSize:  "file exceeds the form's maximum upload size",
	UploadErrPartial:   "file was only partially uploaded",
	UploadErrNoFile:    "no file was uploaded",
	UploadErrNoTmpDir:  "missing temporary directory",
	UploadErrCantWrite: "failed to write file to disk",
	UploadErrExtension: "an extension stopped the upload",
}

func (e UploadError) String() string {
	if s, ok := uploadErrorText[e]; ok {
		return s
	}
	return "unknown upload error"
}

// Valid reports whether e is a known result code.
func (e UploadError) Valid() bool {
	_, ok := uploadErrorText[e]
	return ok
}

// UploadState is the lifecycle state of an UploadedFile.
type UploadState int

const (
	// UploadActive means the stream can be read or moved.
	UploadActive UploadState = iota
	// UploadMoved means MoveTo succeeded. It is terminal.
	UploadMoved
	// UploadErrored means the upload failed. It is terminal.
	UploadErrored
)

func (s UploadState) String() string {
	switch s {
	case UploadActive:
		return "active"
	case UploadMoved:
		return "moved"
	}
	return "errored"
}

// UploadedFile is one file of a multipart upload.
//
// A file whose result code is UploadOK starts Active and owns its stream;
// any other code starts Errored and keeps no stream. MoveTo can succeed at
// most once.
//
// An UploadedFile is not safe for concurrent use.
type UploadedFile struct {
	stream       *Stream
	size         int64
	code         UploadError
	filename     string
	hasFilename  bool
	mediaType    string
	hasMediaType bool
	moved        bool
	chunkSize    int
	log          zerolog.Logger
}

// UploadOption configures an UploadedFile.
type UploadOption func(*UploadedFile)

// ClientFilename records the file name sent by the client.
func ClientFilename(name string) UploadOption {
	return func(f *UploadedFile) {
		f.filename, f.hasFilename = name, true
	}
}

// ClientMediaType records the media type sent by the client.
func ClientMediaType(mediaType string) UploadOption {
	return func(f *UploadedFile) {
		f.mediaType, f.hasMediaType = mediaType, true
	}
}

// UploadChunkSize sets the buffer size MoveTo copies with.
func UploadChunkSize(n int) UploadOption {
	return func(f *UploadedFile) {
		if n > 0 {
			f.chunkSize = n
		}
	}
}

// UploadLogger sets the logger used by MoveTo.
func UploadLogger(logger zerolog.Logger) UploadOption {
	return func(f *UploadedFile) {
		f.log = logger
	}
}

// NewUploadedFile creates an uploaded file. size must not be negative and
// code must be a known result code. stream is required, and kept, only when
// code is UploadOK.
func NewUploadedFile(stream *Stream, size int64, code UploadError, opts ...UploadOption) (*UploadedFile, error) {
	if !code.Valid() {
		return nil, invalidInput("NewUploadedFile", "invalid upload error status %d", int(code))
	}
	if size < 0 {
		return nil, invalidInput("NewUploadedFile", "upload file size must not be negative, got %d", size)
	}
	f := &UploadedFile{
		size:      size,
		code:      code,
		chunkSize: DefaultCopyChunkSize,
		log:       log.Logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if code == UploadOK {
		if stream == nil {
			return nil, invalidInput("NewUploadedFile", "stream is required for a successful upload")
		}
		f.stream = stream
	}
	return f, nil
}

// State returns the current state.
func (f *UploadedFile) State() UploadState {
	switch {
	case f.code != UploadOK:
		return UploadErrored
	case f.moved:
		return UploadMoved
	}
	return UploadActive
}

// Size returns the size declared at construction.
func (f *UploadedFile) Size() int64 { return f.size }

// Code returns the upload result code.
func (f *UploadedFile) Code() UploadError { return f.code }

// ClientFilename returns the client's file name, if one was sent.
func (f *UploadedFile) ClientFilename() (string, bool) { return f.filename, f.hasFilename }

// ClientMediaType returns the client's media type, if one was sent.
func (f *UploadedFile) ClientMediaType() (string, bool) { return f.mediaType, f.hasMediaType }

func (f *UploadedFile) checkActive(op string) error {
	switch f.State() {
	case UploadErrored:
		return &Error{Kind: ErrState, Op: op, Message: "cannot retrieve stream due to upload error", Err: uploadErr(f.code)}
	case UploadMoved:
		return stateError(op, "cannot retrieve stream after it has already been moved")
	}
	return nil
}

// uploadErr turns a result code into an error for wrapping.
func uploadErr(code UploadError) error {
	return errors.New(code.String())
}

// Stream returns the uploaded content. It fails with ErrState once the file
// has been moved or if the upload failed.
func (f *UploadedFile) Stream() (*Stream, error) {
	if err := f.checkActive("Stream"); err != nil {
		return nil, err
	}
	return f.stream, nil
}

// MoveTo writes the uploaded content to a new file at path, replacing any
// existing file. The source stream is rewound first when seekable and is
// released afterwards.
func (f *UploadedFile) MoveTo(path string) error {
	if err := f.checkActive("MoveTo"); err != nil {
		return err
	}
	if path == "" {
		return invalidInput("MoveTo", "invalid path provided for move operation; must be a non-empty string")
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		f.log.Error().Err(err).Str("target", path).Msg("Could not create upload target")
		return resourceError("MoveTo", err, "unable to write to designated path %q", path)
	}
	dst, err := NewStream(file, StreamMode("wb"), StreamURI(path))
	if err != nil {
		file.Close()
		return err
	}

	_, copyErr := f.moveTo("MoveTo", dst)
	if err := dst.Close(); err != nil && copyErr == nil {
		copyErr = err
	}
	return copyErr
}

// MoveToStream is like MoveTo but writes into dst, which the caller keeps
// owning. It returns the number of bytes written.
func (f *UploadedFile) MoveToStream(dst *Stream) (int64, error) {
	if err := f.checkActive("MoveToStream"); err != nil {
		return 0, err
	}
	if dst == nil || !dst.IsWritable() {
		return 0, invalidInput("MoveToStream", "destination stream is not writable")
	}
	return f.moveTo("MoveToStream", dst)
}

func (f *UploadedFile) moveTo(op string, dst *Stream) (int64, error) {
	target, _ := dst.MetadataValue("uri")
	logger := f.log.With().Interface("target", target).Logger()

	src := f.stream
	if src.IsSeekable() {
		if err := src.Rewind(); err != nil {
			logger.Error().Err(err).Msg("Could not rewind upload stream")
			return 0, err
		}
	}
	logger.Debug().Int64("size", f.size).Msg("Moving uploaded file")

	written, err := copyChunks(logger, dst, src, f.chunkSize)
	if err != nil {
		logger.Error().Err(err).Int64("written", written).Msg("Could not move uploaded file")
		if errors.Is(err, ErrState) || errors.Is(err, ErrResource) {
			return written, err
		}
		return written, resourceError(op, err, "unable to move uploaded file")
	}

	f.moved = true
	if res, ok := src.Detach().(io.Closer); ok {
		if err := res.Close(); err != nil {
			logger.Warn().Err(err).Msg("Could not close upload source")
		}
	}
	logger.Debug().Int64("written", written).Msg("Moved uploaded file")
	return written, nil
}

// copyChunks copies src into dst in chunks of size bytes until src is
// exhausted. A short write without an error ends the copy early.
func copyChunks(logger zerolog.Logger, dst, src *Stream, size int) (int64, error) {
	buf := make([]byte, size)
	var written int64
	empty := 0
	for !src.EOF() {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w < n {
				logger.Warn().Int("chunk", n).Int("accepted", w).Msg("Short write, stopping copy")
				return written, nil
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return written, rerr
		}
		if err := src.progress(&empty, n, "MoveTo"); err != nil {
			return written, err
		}
	}
	return written, nil
}
