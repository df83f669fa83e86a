package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// jsonlZstdWriter appends JSON lines to a compressed file. Rotation is
// driven by the generator (one file per render segment).
type jsonlZstdWriter struct {
	mu   sync.Mutex
	path string
	f    *os.File
	enc  *zstd.Encoder
	w    *bufio.Writer
}

func (w *jsonlZstdWriter) Open(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.path = path
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	return nil
}

func (w *jsonlZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return fmt.Errorf("render: writer not open")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *jsonlZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *jsonlZstdWriter) closeLocked() error {
	var errEnc error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		errEnc = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return errEnc
}
