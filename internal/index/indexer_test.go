package index

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Digvijay-x1/search-engine/internal/archive"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
)

type fakeMetaStore struct {
	loc        metadata.Locator
	locErr     error
	setLenArgs []int
	setLenErr  error
}

func (f *fakeMetaStore) FetchLocator(ctx context.Context, docID int64) (metadata.Locator, error) {
	return f.loc, f.locErr
}

func (f *fakeMetaStore) SetDocLength(ctx context.Context, docID int64, n int, title string) error {
	f.setLenArgs = append(f.setLenArgs, n)
	return f.setLenErr
}

type fakeArchiveReader struct {
	data []byte
	err  error
}

func (f *fakeArchiveReader) ReadRecord(file string, offset, length int64, maxDecompressed int64) ([]byte, error) {
	if int64(len(f.data)) > maxDecompressed {
		return nil, archive.ErrOversize
	}
	return f.data, f.err
}

type fakePostingStore struct {
	calls map[string][]int64
}

func newFakePostingStore() *fakePostingStore {
	return &fakePostingStore{calls: make(map[string][]int64)}
}

func (f *fakePostingStore) AddDoc(term string, docID int64, tf uint64) error {
	f.calls[term] = append(f.calls[term], docID)
	return nil
}

func buildRawRecord(t *testing.T, payload []byte) []byte {
	t.Helper()
	header := []byte("WARC/1.0\r\nWARC-Type: response\r\n\r\n")
	return append(append(header, payload...), []byte("\r\n\r\n")...)
}

func TestIndexerHappyPath(t *testing.T) {
	payload := []byte("<html><title>T</title><body>hello world hello</body></html>")
	raw := buildRawRecord(t, payload)

	meta := &fakeMetaStore{loc: metadata.Locator{File: "a.warc.gz", Offset: 0, Length: int32(len(raw))}}
	reader := &fakeArchiveReader{data: raw}
	postings := newFakePostingStore()

	ix := New(Config{MaxDecompressedSize: 100 * 1024 * 1024, MinTermLen: 3}, nil, meta, reader, postings, zap.NewNop())
	ix.processOne(context.Background(), 1)

	require.Len(t, meta.setLenArgs, 1)
	assert.Equal(t, 3, meta.setLenArgs[0])
	assert.ElementsMatch(t, []int64{1}, postings.calls["hello"])
	assert.ElementsMatch(t, []int64{1}, postings.calls["world"])
}

func TestIndexerOversizeSkipsDocument(t *testing.T) {
	reader := &fakeArchiveReader{data: bytes.Repeat([]byte("x"), 200)}
	meta := &fakeMetaStore{loc: metadata.Locator{File: "a.warc.gz", Length: 200}}
	postings := newFakePostingStore()

	ix := New(Config{MaxDecompressedSize: 100, MinTermLen: 3}, nil, meta, reader, postings, zap.NewNop())
	ix.processOne(context.Background(), 1)

	assert.Empty(t, meta.setLenArgs)
	assert.Empty(t, postings.calls)
}

func TestIndexerIdempotentReindex(t *testing.T) {
	payload := []byte("<html><body>quick brown fox</body></html>")
	raw := buildRawRecord(t, payload)
	meta := &fakeMetaStore{loc: metadata.Locator{Length: int32(len(raw))}}
	reader := &fakeArchiveReader{data: raw}
	postings := newFakePostingStore()

	ix := New(Config{MaxDecompressedSize: 100 * 1024 * 1024, MinTermLen: 3}, nil, meta, reader, postings, zap.NewNop())
	ix.processOne(context.Background(), 7)
	ix.processOne(context.Background(), 7)

	assert.Equal(t, []int64{7, 7}, postings.calls["quick"])
	assert.Equal(t, []int{3, 3}, meta.setLenArgs)
}
