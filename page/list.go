package page

import (
	"fmt"

	"github.com/wenzapen/trowel/selector"
	"github.com/wenzapen/trowel/view"
	"golang.org/x/net/html"
)

// Selection helpers for the common ItemProcessor shapes. Each returns
// the items of one document in selection order.

// SelectHTML resolves s against an HTML view, honoring any count
// expectations.
func SelectHTML(v view.View, s selector.Selector, opts ...selector.Option) ([]any, error) {
	hv, ok := v.(*view.HTML)
	if !ok {
		return nil, fmt.Errorf("listing expects an html view")
	}
	nodes, err := selector.Match(s, hv.Root(), opts...)
	if err != nil {
		return nil, err
	}
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = n
	}
	return items, nil
}

// SelectJSON returns the elements of the array at path in a JSON view.
// An empty path selects the document root.
func SelectJSON(v view.View, path string) ([]any, error) {
	jv, ok := v.(*view.JSON)
	if !ok {
		return nil, fmt.Errorf("listing expects a json view")
	}
	val, err := jv.Lookup(path)
	if err != nil {
		return nil, err
	}
	arr, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("json path %q: expected array, got %T", path, val)
	}
	return arr, nil
}

// SelectCSV returns one item per data row of a CSV view, each a
// map[string]string keyed by header column.
func SelectCSV(v view.View) ([]any, error) {
	cv, ok := v.(*view.CSV)
	if !ok {
		return nil, fmt.Errorf("listing expects a csv view")
	}
	rows := cv.Rows()
	items := make([]any, len(rows))
	for i, row := range rows {
		items[i] = row
	}
	return items, nil
}

// HTMLItem asserts a selected item back to an HTML node inside a
// ProcessItem transform.
func HTMLItem(item any) (*html.Node, error) {
	n, ok := item.(*html.Node)
	if !ok {
		return nil, fmt.Errorf("expected html node item, got %T", item)
	}
	return n, nil
}
