package selector

import (
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

type xpathSelector struct {
	expr     string
	compiled *xpath.Expr
}

// XPath compiles an XPath expression. It panics on an invalid
// expression, which is a programmer error in the page definition.
func XPath(expr string) Selector {
	return &xpathSelector{expr: expr, compiled: xpath.MustCompile(expr)}
}

func (x *xpathSelector) MatchAll(n *html.Node) []*html.Node {
	return htmlquery.QuerySelectorAll(n, x.compiled)
}

func (x *xpathSelector) String() string {
	return x.expr
}
