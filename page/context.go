package page

import (
	"fmt"

	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/view"
	"go.uber.org/zap"
)

// Context carries everything a processor may read during one
// invocation. It is built by the resolver and discarded with the unit.
type Context struct {
	Input   Record
	View    view.View
	Request *fetch.Request
	Depth   int
	Deps    map[string]Outcome
	Logger  *zap.Logger
}

// HTML returns the view as an HTML tree or fails if the unit declared
// a different content kind.
func (c *Context) HTML() (*view.HTML, error) {
	v, ok := c.View.(*view.HTML)
	if !ok {
		return nil, fmt.Errorf("page has no html view (got %v)", kindOf(c.View))
	}
	return v, nil
}

// JSON returns the view as a decoded JSON document.
func (c *Context) JSON() (*view.JSON, error) {
	v, ok := c.View.(*view.JSON)
	if !ok {
		return nil, fmt.Errorf("page has no json view (got %v)", kindOf(c.View))
	}
	return v, nil
}

// CSV returns the view as parsed CSV rows.
func (c *Context) CSV() (*view.CSV, error) {
	v, ok := c.View.(*view.CSV)
	if !ok {
		return nil, fmt.Errorf("page has no csv view (got %v)", kindOf(c.View))
	}
	return v, nil
}

func kindOf(v view.View) string {
	if v == nil {
		return "none"
	}
	return v.Kind().String()
}
