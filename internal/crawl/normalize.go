package crawl

import (
	"net/url"

	"github.com/PuerkitoBio/purell"
)

// normalizeFlags gives "canonical url" enough normalization to dedupe
// trivially-equivalent URLs without attempting full RFC
// canonicalization (out of scope).
const normalizeFlags = purell.FlagsSafe |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveFragment |
	purell.FlagSortQuery

// Normalize canonicalizes a URL string for use as the documents.url
// unique key.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(u, normalizeFlags)
	return normalized, nil
}
