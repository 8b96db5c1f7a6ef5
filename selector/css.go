package selector

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

type cssSelector struct {
	expr string
	sel  cascadia.SelectorGroup
}

// CSS compiles a CSS selector expression. It panics on an invalid
// expression, which is a programmer error in the page definition.
func CSS(expr string) Selector {
	sel, err := cascadia.ParseGroup(expr)
	if err != nil {
		panic("selector: invalid css expression " + expr + ": " + err.Error())
	}
	return &cssSelector{expr: expr, sel: sel}
}

func (c *cssSelector) MatchAll(n *html.Node) []*html.Node {
	return cascadia.QueryAll(n, c.sel)
}

func (c *cssSelector) String() string {
	return c.expr
}
