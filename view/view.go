// Package view wraps one fetched document body in one queryable
// structural representation, chosen by the document's content kind.
// Views are read-only for the lifetime of the owning processing step.
package view

import "fmt"

type Kind int

const (
	KindHTML Kind = iota
	KindJSON
	KindCSV
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindJSON:
		return "json"
	case KindCSV:
		return "csv"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type View interface {
	Kind() Kind
}

// Build parses body into the representation for kind.
func Build(kind Kind, body []byte) (View, error) {
	switch kind {
	case KindHTML:
		return ParseHTML(body)
	case KindJSON:
		return ParseJSON(body)
	case KindCSV:
		return ParseCSV(body)
	default:
		return nil, fmt.Errorf("unknown content kind %v", kind)
	}
}
