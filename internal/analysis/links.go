// Package analysis extracts outbound links from fetched pages. Link
// following is optional and gated by CRAWLER_FOLLOW_LINKS.
package analysis

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	cssURLRx = regexp.MustCompile(`background.*:.*url\(["']?([^'"\)]+)["']?\)`)

	linkAttrs = []struct {
		tag  string
		attr string
	}{
		{"a", "href"},
		{"link", "href"},
	}
)

// ExtractLinks pulls every <a href>/<link href> target (and, for CSS
// responses, url(...) references inside background declarations; other
// url(...) uses such as @import or src are not matched) out of an HTTP
// response body and
// resolves them against the request URL. Non-HTML/CSS content types
// yield no links.
func ExtractLinks(resp *http.Response) ([]*url.URL, error) {
	ctype := resp.Header.Get("Content-Type")

	var rawLinks []string
	switch {
	case strings.HasPrefix(ctype, "text/html"):
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("analysis: parse html: %w", err)
		}
		for _, la := range linkAttrs {
			doc.Find(fmt.Sprintf("%s[%s]", la.tag, la.attr)).Each(func(_ int, s *goquery.Selection) {
				if v, ok := s.Attr(la.attr); ok {
					rawLinks = append(rawLinks, v)
				}
			})
		}
	case strings.HasPrefix(ctype, "text/css"):
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("analysis: read css body: %w", err)
		}
		for _, m := range cssURLRx.FindAllStringSubmatch(string(data), -1) {
			rawLinks = append(rawLinks, m[1])
		}
	default:
		return nil, nil
	}

	seen := make(map[string]*url.URL)
	for _, raw := range rawLinks {
		resolved, err := resp.Request.URL.Parse(raw)
		if err != nil {
			continue
		}
		seen[resolved.String()] = resolved
	}

	out := make([]*url.URL, 0, len(seen))
	for _, u := range seen {
		out = append(out, u)
	}
	return out, nil
}
