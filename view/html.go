package view

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/wenzapen/trowel/selector"
	"golang.org/x/net/html"
)

// HTML is the parsed view over an HTML document.
type HTML struct {
	root *html.Node
	doc  *goquery.Document
}

func ParseHTML(body []byte) (*HTML, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &HTML{root: root, doc: goquery.NewDocumentFromNode(root)}, nil
}

func (v *HTML) Kind() Kind {
	return KindHTML
}

// Root returns the document root for selector resolution.
func (v *HTML) Root() *html.Node {
	return v.root
}

// Document exposes the goquery wrapper for free-form traversal.
func (v *HTML) Document() *goquery.Document {
	return v.doc
}

// Select resolves s against the whole document.
func (v *HTML) Select(s selector.Selector, opts ...selector.Option) ([]*html.Node, error) {
	return selector.Match(s, v.root, opts...)
}

// SelectOne resolves s with exactly-one semantics.
func (v *HTML) SelectOne(s selector.Selector) (*html.Node, error) {
	return selector.MatchOne(s, v.root)
}

// Text resolves s to exactly one node and returns its trimmed text.
func (v *HTML) Text(s selector.Selector) (string, error) {
	n, err := v.SelectOne(s)
	if err != nil {
		return "", err
	}
	return Text(n), nil
}

// Text returns the trimmed inner text of a node.
func Text(n *html.Node) string {
	return strings.TrimSpace(htmlquery.InnerText(n))
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
