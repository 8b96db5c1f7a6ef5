// Package selector resolves selection expressions against parsed HTML
// trees. Resolving to many matches returns a possibly empty slice;
// resolving to exactly one is a distinct operation with explicit
// failure modes for zero and multiple matches.
package selector

import "golang.org/x/net/html"

type Selector interface {
	// MatchAll returns every node under n matching the expression,
	// in document order.
	MatchAll(n *html.Node) []*html.Node
	String() string
}

// expect mirrors the optional item-count assertions a selection can
// carry: an exact count, a minimum, a maximum. Zero means unset.
type expect struct {
	num, min, max int
}

type Option func(*expect)

// Num asserts the selection yields exactly n items.
func Num(n int) Option {
	return func(e *expect) {
		e.num = n
	}
}

// Min asserts the selection yields at least n items.
func Min(n int) Option {
	return func(e *expect) {
		e.min = n
	}
}

// Max asserts the selection yields at most n items.
func Max(n int) Option {
	return func(e *expect) {
		e.max = n
	}
}

func (e expect) check(sel string, got int) error {
	if e.num > 0 && got != e.num {
		return &SelectionError{Selector: sel, Expected: e.num, Op: "exactly", Got: got}
	}
	if e.min > 0 && got < e.min {
		return &SelectionError{Selector: sel, Expected: e.min, Op: "at least", Got: got}
	}
	if e.max > 0 && got > e.max {
		return &SelectionError{Selector: sel, Expected: e.max, Op: "at most", Got: got}
	}
	return nil
}

func (e expect) apply(opts []Option) expect {
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Match resolves s under n and verifies any count expectations. Zero
// matches with no expectations is not an error.
func Match(s Selector, n *html.Node, opts ...Option) ([]*html.Node, error) {
	var e expect
	e = e.apply(opts)
	nodes := s.MatchAll(n)
	if err := e.check(s.String(), len(nodes)); err != nil {
		return nil, err
	}
	return nodes, nil
}

// MatchOne resolves s under n with exactly-one semantics. Zero matches
// is a NoMatchError, more than one an AmbiguousMatchError; neither is
// ever silently defaulted.
func MatchOne(s Selector, n *html.Node) (*html.Node, error) {
	nodes := s.MatchAll(n)
	switch len(nodes) {
	case 0:
		return nil, &NoMatchError{Selector: s.String()}
	case 1:
		return nodes[0], nil
	default:
		return nil, &AmbiguousMatchError{Selector: s.String(), Count: len(nodes)}
	}
}
