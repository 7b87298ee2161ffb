package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Digvijay-x1/search-engine/internal/invindex"
	"github.com/Digvijay-x1/search-engine/internal/metadata"
)

// PostingStore is the subset of *invindex.Store the ranker needs.
type PostingStore interface {
	Get(term string) (invindex.Posting, error)
}

// MetaStore is the subset of *metadata.Store the ranker needs.
type MetaStore interface {
	FetchMetaBatch(ctx context.Context, docIDs []int64) (map[int64]metadata.DocMeta, error)
	FetchDocLengths(ctx context.Context, docIDs []int64) (map[int64]int, error)
	AverageDocLength(ctx context.Context) (float64, int64, error)
}

// Cache is the subset of *queue.Queue the ranker needs for the
// optional query-result cache.
type Cache interface {
	CacheGet(ctx context.Context, query string) (string, bool, error)
	CacheSet(ctx context.Context, query, value string, ttl time.Duration) error
}

// SnippetSource recovers a document's visible text for snippet
// generation, re-reading and re-parsing its archive slice.
type SnippetSource interface {
	Text(ctx context.Context, docID int64) (string, error)
}

// Config holds the ranker's tunables.
type Config struct {
	TopK         int
	SnippetChars int
	CacheTTL     time.Duration
	MinTermLen   int
	Params       Params
}

// Service implements the query pipeline: normalize, fetch postings,
// score, fetch metadata, build snippets.
type Service struct {
	cfg      Config
	postings PostingStore
	meta     MetaStore
	cache    Cache
	snippets SnippetSource
}

// New constructs a ranking Service.
func New(cfg Config, postings PostingStore, meta MetaStore, cache Cache, snippets SnippetSource) *Service {
	return &Service{cfg: cfg, postings: postings, meta: meta, cache: cache, snippets: snippets}
}

// Result is one ranked document in a search response.
type Result struct {
	ID      int64   `json:"id"`
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// SearchMeta carries response-level metadata.
type SearchMeta struct {
	Count     int   `json:"count"`
	LatencyMs int64 `json:"latency_ms"`
}

// SearchResponse is the full /search JSON payload.
type SearchResponse struct {
	Query   string     `json:"query"`
	Results []Result   `json:"results"`
	Meta    SearchMeta `json:"meta"`
}

// Search runs the full query pipeline for a raw query string.
func (s *Service) Search(ctx context.Context, rawQuery string) (*SearchResponse, error) {
	start := time.Now()

	terms := NormalizeQuery(rawQuery, s.cfg.MinTermLen)
	cacheKey := strings.Join(terms, " ")

	if s.cache != nil {
		if cached, ok, err := s.cache.CacheGet(ctx, cacheKey); err == nil && ok {
			var resp SearchResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				resp.Meta.LatencyMs = time.Since(start).Milliseconds()
				return &resp, nil
			}
		}
	}

	postings := make(map[string]invindex.Posting, len(terms))
	for _, term := range terms {
		p, err := s.postings.Get(term)
		if err != nil {
			return nil, fmt.Errorf("rank: fetch posting for %q: %w", term, err)
		}
		postings[term] = p // nil posting == missing term, treated as empty
	}

	avgdl, n, err := s.meta.AverageDocLength(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: average doc length: %w", err)
	}

	candidateIDs := collectCandidates(postings)
	docLengths, err := s.meta.FetchDocLengths(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("rank: fetch doc lengths: %w", err)
	}

	scored := Score(postings, docLengths, n, avgdl, s.cfg.Params)

	topK := s.cfg.TopK
	if topK <= 0 || topK > len(scored) {
		topK = len(scored)
	}
	scored = scored[:topK]

	ids := make([]int64, len(scored))
	for i, sc := range scored {
		ids[i] = sc.DocID
	}
	docMeta, err := s.meta.FetchMetaBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("rank: fetch meta batch: %w", err)
	}

	results := make([]Result, 0, len(scored))
	for _, sc := range scored {
		m := docMeta[sc.DocID]
		snippet := ""
		if s.snippets != nil {
			if text, err := s.snippets.Text(ctx, sc.DocID); err == nil {
				snippet = Snippet(text, terms, s.cfg.SnippetChars)
			}
		}
		results = append(results, Result{
			ID:      sc.DocID,
			URL:     m.URL,
			Title:   m.Title,
			Snippet: snippet,
			Score:   sc.Score,
		})
	}

	resp := &SearchResponse{
		Query:   rawQuery,
		Results: results,
		Meta:    SearchMeta{Count: len(results)},
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(resp); err == nil {
			_ = s.cache.CacheSet(ctx, cacheKey, string(encoded), s.cfg.CacheTTL)
		}
	}

	resp.Meta.LatencyMs = time.Since(start).Milliseconds()
	return resp, nil
}

func collectCandidates(postings map[string]invindex.Posting) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range postings {
		for _, docID := range p.DocIDs() {
			if !seen[docID] {
				seen[docID] = true
				ids = append(ids, docID)
			}
		}
	}
	return ids
}
