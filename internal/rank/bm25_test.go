package rank

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Digvijay-x1/search-engine/internal/invindex"
)

// TestScoreSingleTermOnlyMatchingDoc covers a query of a term
// appearing in only one document: it returns just that document with
// a positive score.
func TestScoreSingleTermOnlyMatchingDoc(t *testing.T) {
	postings := map[string]invindex.Posting{
		"brown": {{DocID: 1, TF: 1}},
	}
	docLengths := map[int64]int{1: 3, 2: 4}

	scored := Score(postings, docLengths, 2, 3.5, DefaultParams)

	require.Len(t, scored, 1)
	require.Equal(t, int64(1), scored[0].DocID)
	require.Greater(t, scored[0].Score, 0.0)
}

// TestScoreMultiDocDeterministicOrder covers S3's second half: a term
// present in both documents is returned with both, sorted
// deterministically by score then doc id.
func TestScoreMultiDocDeterministicOrder(t *testing.T) {
	postings := map[string]invindex.Posting{
		"fox": {{DocID: 1, TF: 1}, {DocID: 2, TF: 2}},
	}
	docLengths := map[int64]int{1: 3, 2: 4}

	scored := Score(postings, docLengths, 2, 3.5, DefaultParams)

	require.Len(t, scored, 2)
	ids := []int64{scored[0].DocID, scored[1].DocID}
	// Doc 2 (tf=2) outscores doc 1 (tf=1): about 0.241 against 0.194.
	require.Equal(t, []int64{2, 1}, ids)
}

func TestScoreMissingTermYieldsNoCandidates(t *testing.T) {
	postings := map[string]invindex.Posting{
		"nonexistent": nil,
	}
	scored := Score(postings, map[int64]int{}, 2, 3.5, DefaultParams)
	require.Empty(t, scored)
}

func TestIDFDecreasesAsDocFrequencyIncreases(t *testing.T) {
	rare := IDF(100, 1)
	common := IDF(100, 50)
	require.Greater(t, rare, common)
}

func TestTermFrequencyLegacyFallback(t *testing.T) {
	p := invindex.Posting{{DocID: 1, TF: 0}}
	require.Equal(t, uint64(1), termFrequency(p, 1))
	require.Equal(t, uint64(0), termFrequency(p, 2))
}
