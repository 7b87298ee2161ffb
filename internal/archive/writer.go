// Package archive implements a WARC-style append-only record store:
// one gzip member per record, concatenated, with random access given
// an external (offset, length) locator.
package archive

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// Writer appends gzip-compressed WARC records to a single file and
// reports the byte range each record occupies. It is safe for
// concurrent use: calls are serialized on an internal mutex.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewWriter opens (creating if needed) the archive file at path in
// append mode.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	return &Writer{f: f, path: path}, nil
}

// Path returns the archive file's full path.
func (w *Writer) Path() string { return w.path }

// Basename returns the archive file's basename, the value persisted in
// the documents.file_path column.
func (w *Writer) Basename() string { return filepath.Base(w.path) }

// WriteRecord builds and appends one gzip-compressed WARC response
// record for url/payload. It returns the byte offset at which the gzip
// member begins and the compressed member's length.
//
// A write or flush failure leaves the record "not written": callers
// must not mark the corresponding document crawled.
func (w *Writer) WriteRecord(url string, payload []byte) (offset int64, length int64, err error) {
	raw, err := marshalWARC(url, payload)
	if err != nil {
		return 0, 0, fmt.Errorf("build warc record: %w", err)
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
	if err != nil {
		return 0, 0, fmt.Errorf("init gzip writer: %w", err)
	}
	if _, err := gz.Write(raw); err != nil {
		return 0, 0, fmt.Errorf("gzip write: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, 0, fmt.Errorf("gzip close: %w", err)
	}
	compressed := buf.Bytes()

	w.mu.Lock()
	defer w.mu.Unlock()

	pos, err := w.f.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, 0, fmt.Errorf("seek to end: %w", err)
	}
	n, err := w.f.Write(compressed)
	if err != nil {
		return 0, 0, fmt.Errorf("write record: %w", err)
	}
	if err := w.f.Sync(); err != nil {
		return 0, 0, fmt.Errorf("flush record: %w", err)
	}

	return pos, int64(n), nil
}

// Close releases the underlying file handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}
