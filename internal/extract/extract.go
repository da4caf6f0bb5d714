package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements whose subtree never contributes user-visible prose.
var skipElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"iframe":   {},
	"img":      {},
	"svg":      {},
	"picture":  {},
	"video":    {},
	"audio":    {},
	"canvas":   {},
	"head":     {},
}

// Text linearizes the visible prose of a rendered HTML document. Non-content
// nodes are skipped, text nodes are concatenated in document order separated
// by single spaces, and all whitespace runs collapse to one space.
func Text(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skipElements[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			t := collapseWhitespace(n.Data)
			if t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(b.String()), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
