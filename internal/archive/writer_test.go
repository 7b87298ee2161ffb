package archive

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.warc.gz")

	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	body := []byte("<html><title>T</title><body>hello world hello</body></html>")
	offset, length, err := w.WriteRecord("https://example.test/a", body)
	require.NoError(t, err)
	require.Greater(t, length, int64(0))

	r := NewReader(dir)
	decompressed, err := r.ReadRecord(w.Basename(), offset, length, 100*1024*1024)
	require.NoError(t, err)

	_, payload, err := SplitWARCRecord(decompressed)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, body), "payload should start with the original body")
}

func TestWriteRecordRandomAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.warc.gz")

	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	bodies := [][]byte{
		[]byte("record one payload"),
		[]byte("record two payload, a bit longer than the first"),
		[]byte("record three"),
	}

	type locator struct {
		offset, length int64
	}
	var locators []locator
	for i, b := range bodies {
		off, ln, err := w.WriteRecord("https://example.test/"+string(rune('a'+i)), b)
		require.NoError(t, err)
		locators = append(locators, locator{off, ln})
	}

	r := NewReader(dir)
	// Read record two in isolation; it must not be influenced by its
	// neighbors.
	decompressed, err := r.ReadRecord(w.Basename(), locators[1].offset, locators[1].length, 100*1024*1024)
	require.NoError(t, err)
	_, payload, err := SplitWARCRecord(decompressed)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, bodies[1]))
}

func TestReadRecordOversizeRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.warc.gz")

	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	body := bytes.Repeat([]byte("x"), 4096)
	offset, length, err := w.WriteRecord("https://example.test/big", body)
	require.NoError(t, err)

	r := NewReader(dir)
	_, err = r.ReadRecord(w.Basename(), offset, length, 1024)
	require.ErrorIs(t, err, ErrOversize)
}

func TestReadRecordShortReadRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crawl.warc.gz")

	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	body := []byte("short read test")
	offset, length, err := w.WriteRecord("https://example.test/short", body)
	require.NoError(t, err)

	r := NewReader(dir)
	_, err = r.ReadRecord(w.Basename(), offset, length+1000, 100*1024*1024)
	require.ErrorIs(t, err, ErrShortRead)
}
