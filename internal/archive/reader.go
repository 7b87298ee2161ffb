package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// ErrOversize is returned when a decompressed record would exceed the
// configured maximum size.
var ErrOversize = errors.New("archive: decompressed record exceeds maximum size")

// ErrShortRead is returned when fewer than length bytes could be read
// at offset.
var ErrShortRead = errors.New("archive: short read")

// Reader performs random-access reads against archive files rooted at
// a configured directory; the document record only ever stores the
// basename, and the full path is reconstructed here.
type Reader struct {
	root string
}

// NewReader constructs a Reader rooted at root.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// ReadRecord seeks to offset in file (resolved under root), reads
// exactly length bytes, gzip-decompresses them, and enforces
// maxDecompressed as an upper bound on the output size.
func (r *Reader) ReadRecord(file string, offset, length int64, maxDecompressed int64) ([]byte, error) {
	f, err := os.Open(filepath.Join(r.root, file))
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to offset: %w", err)
	}

	raw := make([]byte, length)
	n, err := io.ReadFull(f, raw)
	if err != nil || int64(n) != length {
		return nil, ErrShortRead
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open gzip member: %w", err)
	}
	defer gz.Close()

	limited := io.LimitReader(gz, maxDecompressed+1)
	decompressed, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("decompress record: %w", err)
	}
	if int64(len(decompressed)) > maxDecompressed {
		return nil, ErrOversize
	}

	return decompressed, nil
}

// SplitWARCRecord locates the blank-line boundary (CRLFCRLF) that ends
// the WARC header block and returns the header bytes and the HTML
// payload that follows.
func SplitWARCRecord(record []byte) (header, payload []byte, err error) {
	boundary := []byte("\r\n\r\n")
	idx := bytes.Index(record, boundary)
	if idx < 0 {
		return nil, nil, errors.New("archive: missing WARC header boundary")
	}
	return record[:idx], record[idx+len(boundary):], nil
}
