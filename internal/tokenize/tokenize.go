// Package tokenize implements the canonical tokenizer both the indexer
// and the ranker must agree on: a maximal run of alphanumerics,
// case-folded to lower, discarding tokens shorter than minLen.
package tokenize

import "unicode"

// Tokens walks text and returns every token of at least minLen runes,
// in order, including repeats (the indexer needs the raw stream to
// compute doc_length and per-term frequency before deduplicating).
func Tokens(text string, minLen int) []string {
	var tokens []string
	runes := []rune(text)
	n := len(runes)

	i := 0
	for i < n {
		if !isAlnum(runes[i]) {
			i++
			continue
		}
		start := i
		for i < n && isAlnum(runes[i]) {
			i++
		}
		if i-start >= minLen {
			tokens = append(tokens, lower(runes[start:i]))
		}
	}
	return tokens
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lower(runes []rune) string {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return string(out)
}

// Frequencies counts occurrences of each token in tokens, returning
// both the frequency map and len(tokens), the pre-deduplication count
// used as doc_length.
func Frequencies(tokens []string) (map[string]uint64, int) {
	freq := make(map[string]uint64, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq, len(tokens)
}
