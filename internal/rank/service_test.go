package rank

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Digvijay-x1/search-engine/internal/invindex"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
)

type fakePostings struct {
	data map[string]invindex.Posting
}

func (f *fakePostings) Get(term string) (invindex.Posting, error) {
	return f.data[term], nil
}

type fakeMeta struct {
	meta       map[int64]metadata.DocMeta
	docLengths map[int64]int
	avgdl      float64
	total      int64
}

func (f *fakeMeta) FetchMetaBatch(ctx context.Context, docIDs []int64) (map[int64]metadata.DocMeta, error) {
	out := make(map[int64]metadata.DocMeta, len(docIDs))
	for _, id := range docIDs {
		out[id] = f.meta[id]
	}
	return out, nil
}

func (f *fakeMeta) FetchDocLengths(ctx context.Context, docIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(docIDs))
	for _, id := range docIDs {
		out[id] = f.docLengths[id]
	}
	return out, nil
}

func (f *fakeMeta) AverageDocLength(ctx context.Context) (float64, int64, error) {
	return f.avgdl, f.total, nil
}

type noCache struct{}

func (noCache) CacheGet(ctx context.Context, query string) (string, bool, error) { return "", false, nil }
func (noCache) CacheSet(ctx context.Context, query, value string, ttl time.Duration) error {
	return nil
}

// recordingCache is an in-memory Cache that records every key it was
// asked to read or write, so tests can assert on cache-key identity.
type recordingCache struct {
	store   map[string]string
	getKeys []string
	setKeys []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{store: make(map[string]string)}
}

func (c *recordingCache) CacheGet(ctx context.Context, query string) (string, bool, error) {
	c.getKeys = append(c.getKeys, query)
	v, ok := c.store[query]
	return v, ok, nil
}

func (c *recordingCache) CacheSet(ctx context.Context, query, value string, ttl time.Duration) error {
	c.setKeys = append(c.setKeys, query)
	c.store[query] = value
	return nil
}

type fakeSnippets struct {
	text map[int64]string
}

func (f *fakeSnippets) Text(ctx context.Context, docID int64) (string, error) {
	return f.text[docID], nil
}

func TestServiceSearchReturnsRankedResults(t *testing.T) {
	postings := &fakePostings{data: map[string]invindex.Posting{
		"brown": {{DocID: 1, TF: 1}},
		"fox":   {{DocID: 1, TF: 1}, {DocID: 2, TF: 1}},
	}}
	meta := &fakeMeta{
		meta: map[int64]metadata.DocMeta{
			1: {ID: 1, URL: "http://a.example/", Title: "A"},
			2: {ID: 2, URL: "http://b.example/", Title: "B"},
		},
		docLengths: map[int64]int{1: 3, 2: 4},
		avgdl:      3.5,
		total:      2,
	}
	snippets := &fakeSnippets{text: map[int64]string{
		1: "the quick brown fox jumps",
		2: "a fox ran across the road",
	}}

	svc := New(Config{TopK: 10, SnippetChars: 80, MinTermLen: 3, Params: DefaultParams}, postings, meta, noCache{}, snippets)

	resp, err := svc.Search(context.Background(), "brown fox")
	require.NoError(t, err)
	require.Equal(t, 2, resp.Meta.Count)
	require.Equal(t, int64(1), resp.Results[0].ID, "doc with both query terms should rank first")
	require.Contains(t, resp.Results[0].Snippet, "**fox**")
}

func TestServiceSearchNoMatchingTerms(t *testing.T) {
	postings := &fakePostings{data: map[string]invindex.Posting{}}
	meta := &fakeMeta{avgdl: 0, total: 0}
	svc := New(Config{TopK: 10, SnippetChars: 80, MinTermLen: 3, Params: DefaultParams}, postings, meta, noCache{}, nil)

	resp, err := svc.Search(context.Background(), "nonexistentword")
	require.NoError(t, err)
	require.Empty(t, resp.Results)
}

func TestServiceSearchCacheKeyIsNormalized(t *testing.T) {
	postings := &fakePostings{data: map[string]invindex.Posting{
		"fox": {{DocID: 1, TF: 1}},
	}}
	meta := &fakeMeta{
		meta:       map[int64]metadata.DocMeta{1: {ID: 1, URL: "http://a.example/", Title: "A"}},
		docLengths: map[int64]int{1: 2},
		avgdl:      2,
		total:      1,
	}
	cache := newRecordingCache()
	svc := New(Config{TopK: 10, SnippetChars: 80, MinTermLen: 3, Params: DefaultParams}, postings, meta, cache, nil)

	_, err := svc.Search(context.Background(), "Fox")
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "fox ")
	require.NoError(t, err)

	require.Len(t, cache.setKeys, 1, "\"Fox\" and \"fox \" should normalize to the same cache key, so only the first search misses the cache")
	require.Equal(t, []string{"fox", "fox"}, cache.getKeys)
}
