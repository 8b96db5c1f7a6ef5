package selector

import (
	"regexp"

	"golang.org/x/net/html"
)

type similarLink struct {
	expr string
	re   *regexp.Regexp
}

// SimilarLink matches anchor elements whose href matches the given
// regular expression, deduplicated by href in document order. It
// panics on an invalid expression.
func SimilarLink(expr string) Selector {
	return &similarLink{expr: expr, re: regexp.MustCompile(expr)}
}

func (s *similarLink) MatchAll(n *html.Node) []*html.Node {
	seen := make(map[string]bool)
	var matches []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "a" {
			for _, attr := range node.Attr {
				if attr.Key != "href" {
					continue
				}
				if s.re.MatchString(attr.Val) && !seen[attr.Val] {
					seen[attr.Val] = true
					matches = append(matches, node)
				}
				break
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return matches
}

func (s *similarLink) String() string {
	return s.expr
}
