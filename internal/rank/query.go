package rank

import "github.com/Digvijay-x1/search-engine/internal/tokenize"

// NormalizeQuery case-folds, strips punctuation (via the shared
// tokenizer's alphanumeric-run rule), tokenizes by whitespace/non-
// alnum boundaries, filters stop words, and drops tokens shorter than
// minLen.
func NormalizeQuery(raw string, minLen int) []string {
	candidates := tokenize.Tokens(raw, minLen)

	out := make([]string, 0, len(candidates))
	for _, t := range candidates {
		if stopWords[t] {
			continue
		}
		out = append(out, t)
	}
	return out
}
