package index

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skipTags are subtrees whose text is not part of the visible page.
var skipTags = map[string]bool{
	"script": true,
	"style":  true,
}

// ExtractVisibleText parses HTML and returns the document's <title>
// and its visible text, produced by a DFS over the node tree that
// skips <script>/<style> subtrees and joins sibling text nodes with a
// single space.
func ExtractVisibleText(r io.Reader) (title, text string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if n.Data == "title" {
				if title == "" {
					title = collectText(n)
				}
				return
			}
		case html.TextNode:
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(trimmed)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(title), b.String(), nil
}

// collectText concatenates all text-node descendants of n.
func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
