package crawl

import "strings"

// minURLLength is the shortest string that could plausibly be a URL.
const minURLLength = 10

// ValidURL reports whether a URL is eligible for fetching: it must
// start with http:// or https:// and be at least minURLLength bytes
// long. Anything else is discarded, not queued.
func ValidURL(raw string) bool {
	if len(raw) < minURLLength {
		return false
	}
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
