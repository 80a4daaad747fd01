package http

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpmsg/internal/membuf"
)

// spillBuffer keeps content in memory up to limit bytes and moves it to a
// temp file in dir once a write would grow it past that. The file is
// removed on Close.
type spillBuffer struct {
	mem   *membuf.Buffer
	file  *os.File
	dir   string
	limit int64
	log   zerolog.Logger
}

func newSpillBuffer(dir string, limit int64, logger zerolog.Logger) *spillBuffer {
	return &spillBuffer{mem: membuf.New(nil), dir: dir, limit: limit, log: logger}
}

func (b *spillBuffer) active() io.ReadWriteSeeker {
	if b.file != nil {
		return b.file
	}
	return b.mem
}

func (b *spillBuffer) Read(p []byte) (int, error) {
	return b.active().Read(p)
}

func (b *spillBuffer) Write(p []byte) (int, error) {
	if b.file == nil {
		pos, err := b.mem.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		if pos+int64(len(p)) > b.limit {
			if err := b.spill(pos); err != nil {
				return 0, err
			}
		}
	}
	return b.active().Write(p)
}

func (b *spillBuffer) Seek(offset int64, whence int) (int64, error) {
	return b.active().Seek(offset, whence)
}

// Size reports the current content length.
func (b *spillBuffer) Size() int64 {
	if b.file == nil {
		return b.mem.Size()
	}
	fi, err := b.file.Stat()
	if err != nil {
		return 0
	}
	return fi.Size()
}

// spill copies the memory content to a new temp file, positioned at pos.
func (b *spillBuffer) spill(pos int64) error {
	name := filepath.Join(b.dir, "httpmsg-"+uuid.NewString())
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b.mem.Bytes()); err != nil {
		b.discard(f)
		return err
	}
	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		b.discard(f)
		return err
	}
	b.log.Trace().Str("file", name).Int64("size", b.mem.Size()).Msg("Spilled temp stream to disk")
	b.mem.Close()
	b.mem = nil
	b.file = f
	return nil
}

func (b *spillBuffer) discard(f *os.File) {
	f.Close()
	if err := os.Remove(f.Name()); err != nil {
		b.log.Warn().Err(err).Str("file", f.Name()).Msg("Could not remove temp file")
	}
}

// Close releases the memory or removes the temp file.
func (b *spillBuffer) Close() error {
	if b.file == nil {
		return b.mem.Close()
	}
	f := b.file
	b.file = nil
	b.mem = membuf.New(nil)
	b.mem.Close()
	err := f.Close()
	if rerr := os.Remove(f.Name()); rerr != nil {
		b.log.Warn().Err(rerr).Str("file", f.Name()).Msg("Could not remove temp file")
	}
	return err
}
