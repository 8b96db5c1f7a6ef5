package selector

import "fmt"

// NoMatchError reports an exactly-one selection that matched nothing.
type NoMatchError struct {
	Selector string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("selector %q matched no nodes", e.Selector)
}

// AmbiguousMatchError reports an exactly-one selection that matched
// more than one node.
type AmbiguousMatchError struct {
	Selector string
	Count    int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("selector %q matched %d nodes, expected one", e.Selector, e.Count)
}

// SelectionError reports a violated item-count expectation.
type SelectionError struct {
	Selector string
	Op       string
	Expected int
	Got      int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selector %q matched %d nodes, expected %s %d",
		e.Selector, e.Got, e.Op, e.Expected)
}
