package rank

import (
	"strings"
)

// Snippet finds the highest-density window of query terms within text
// and returns it truncated to maxChars, with matches wrapped in bold
// markers.
func Snippet(text string, terms []string, maxChars int) string {
	if text == "" || maxChars <= 0 {
		return ""
	}

	termSet := make(map[string]bool, len(terms))
	for _, t := range terms {
		termSet[t] = true
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return truncate(text, maxChars)
	}

	bestStart, bestCount := 0, -1
	windowWords := estimateWindowWords(words, maxChars)

	for start := 0; start < len(words); start++ {
		end := start + windowWords
		if end > len(words) {
			end = len(words)
		}
		count := 0
		for _, w := range words[start:end] {
			if termSet[strings.ToLower(strings.Trim(w, ".,!?;:\"'()"))] {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			bestStart = start
		}
		if end == len(words) {
			break
		}
	}

	end := bestStart + windowWords
	if end > len(words) {
		end = len(words)
	}
	window := strings.Join(words[bestStart:end], " ")

	highlighted := highlight(window, termSet)
	return truncate(highlighted, maxChars)
}

func estimateWindowWords(words []string, maxChars int) int {
	if len(words) == 0 {
		return 0
	}
	avgWordLen := 0
	for _, w := range words {
		avgWordLen += len(w) + 1
	}
	avgWordLen /= len(words)
	if avgWordLen == 0 {
		avgWordLen = 1
	}
	n := maxChars / avgWordLen
	if n < 1 {
		n = 1
	}
	if n > len(words) {
		n = len(words)
	}
	return n
}

func highlight(window string, termSet map[string]bool) string {
	words := strings.Fields(window)
	for i, w := range words {
		bare := strings.Trim(w, ".,!?;:\"'()")
		if termSet[strings.ToLower(bare)] {
			words[i] = "**" + w + "**"
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
