// Package rank implements the ranking service: parse the query,
// gather posting lists, score candidates with BM25, join with
// metadata, and return a ranked result list.
package rank

import (
	"math"
	"sort"

	"github.com/Digvijay-x1/search-engine/internal/invindex"
)

// Params holds the BM25 tuning constants.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams are the standard BM25 constants: k1=1.2, b=0.75.
var DefaultParams = Params{K1: 1.2, B: 0.75}

// Scored is one candidate document with its BM25 score.
type Scored struct {
	DocID int64
	Score float64
}

// IDF computes the inverse document frequency weight:
// log((N - n_t + 0.5)/(n_t + 0.5) + 1).
func IDF(n, nt int64) float64 {
	return math.Log((float64(n-nt)+0.5)/(float64(nt)+0.5) + 1)
}

// termFrequency recovers f(t,D): the tf recorded against docID in
// posting, or 1 if the posting only carries doc-id membership (the
// legacy comma-separated encoding).
func termFrequency(p invindex.Posting, docID int64) uint64 {
	if e, ok := p.Contains(docID); ok {
		if e.TF == 0 {
			return 1
		}
		return e.TF
	}
	return 0
}

// Score computes BM25 for every candidate doc id appearing in any of
// the per-term postings, given total corpus size N, average doc
// length avgdl, and each candidate's own doc_length. Results are
// sorted by descending score, tie-broken by ascending doc_id for
// determinism.
func Score(postings map[string]invindex.Posting, docLengths map[int64]int, n int64, avgdl float64, params Params) []Scored {
	candidates := make(map[int64]bool)
	for _, p := range postings {
		for _, e := range p {
			candidates[e.DocID] = true
		}
	}

	scores := make(map[int64]float64, len(candidates))
	for _, posting := range postings {
		nt := int64(len(posting))
		if nt == 0 {
			continue
		}
		weight := IDF(n, nt)
		for docID := range candidates {
			tf := termFrequency(posting, docID)
			if tf == 0 {
				continue
			}
			docLen := float64(docLengths[docID])
			denom := float64(tf) + params.K1*(1-params.B+params.B*safeDiv(docLen, avgdl))
			if denom == 0 {
				continue
			}
			scores[docID] += weight * float64(tf) * (params.K1 + 1) / denom
		}
	}

	out := make([]Scored, 0, len(scores))
	for id, s := range scores {
		out = append(out, Scored{DocID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID < out[j].DocID
	})
	return out
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
