package page

import (
	"fmt"

	"github.com/wenzapen/trowel/view"
	"go.uber.org/zap"
)

// Resolve runs a unit's extraction logic against its parsed view and
// classifies the result. It never fetches: listing items that map to
// further units come back as continuations for the driver to schedule.
// Extraction failures are wrapped as ExtractionError with the unit's
// identity. v is nil for pure units.
func Resolve(u *Unit, v view.View, deps map[string]Outcome, logger *zap.Logger) (Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := &Context{
		Input:   u.Input,
		View:    v,
		Request: u.Source,
		Depth:   u.Depth,
		Deps:    deps,
		Logger:  logger.With(zap.String("page", u.Name())),
	}

	var out Outcome
	switch p := u.Proc.(type) {
	case ItemProcessor:
		items, err := p.SelectItems(v)
		if err != nil {
			return Outcome{}, extractionErr(u, err)
		}
		for i, item := range items {
			itemOut, err := p.ProcessItem(ctx, item)
			if err != nil {
				return Outcome{}, extractionErr(u, fmt.Errorf("item %d: %w", i, err))
			}
			out.extend(itemOut)
		}
	case Processor:
		var err error
		out, err = p.Process(ctx)
		if err != nil {
			return Outcome{}, extractionErr(u, err)
		}
	default:
		return Outcome{}, &ConfigurationError{
			Unit:   u.Name(),
			Reason: "processor implements neither Processor nor ItemProcessor",
		}
	}

	if pg, ok := u.Proc.(Paginator); ok {
		if next := pg.NextSource(ctx); next != nil {
			out.Next = append(out.Next, &Unit{
				Proc:       u.Proc,
				Input:      u.Input,
				Source:     next,
				Role:       u.Role,
				Depth:      u.Depth,
				pagination: true,
			})
		}
	}
	return out, nil
}

func extractionErr(u *Unit, err error) error {
	e := &ExtractionError{Unit: u.Name(), Err: err}
	if u.Source != nil {
		e.Source = u.Source.URL
	}
	return e
}
