// Package page defines the unit of work: a typed processor bound to one
// document, consuming an optional payload carried in from a parent unit
// and producing finished records, further units to schedule, or both.
package page

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/view"
)

// Record is one finished structured mapping, ready for the output sink.
type Record map[string]any

// Merge combines an inherited payload with extracted fields. Extracted
// fields win on collision.
func Merge(input, extracted Record) Record {
	out := make(Record, len(input)+len(extracted))
	for k, v := range input {
		out[k] = v
	}
	for k, v := range extracted {
		out[k] = v
	}
	return out
}

// Role documents what a unit is for. It is metadata, not behavior
// dispatch; the engine only treats RoleAugmentation specially, holding
// such seeds until the primary queue drains.
type Role int

const (
	RoleDetail Role = iota
	RoleListing
	RoleAuxiliary
	RoleAugmentation
)

func (r Role) String() string {
	switch r {
	case RoleListing:
		return "listing"
	case RoleAuxiliary:
		return "auxiliary"
	case RoleAugmentation:
		return "augmentation"
	default:
		return "detail"
	}
}

// Processor is the extraction logic for one document. Process is
// invoked exactly once per unit, after its document (if any) has been
// fetched and parsed. It must be side-effect free: the same input and
// document always produce the same outcome.
type Processor interface {
	Process(ctx *Context) (Outcome, error)
}

// ItemProcessor is the listing shape: a selection strategy splitting
// one document into items, and a per-item transform applied in
// selection order. Payload propagation is the transform's
// responsibility, not the engine's.
type ItemProcessor interface {
	SelectItems(v view.View) ([]any, error)
	ProcessItem(ctx *Context, item any) (Outcome, error)
}

// Optional processor hooks.
type (
	// Sourcer derives a fetch request from the unit's input when no
	// source was declared.
	Sourcer interface {
		SourceFromInput(input Record) (*fetch.Request, error)
	}

	// ContentKinder overrides the default HTML content kind.
	ContentKinder interface {
		ContentKind() view.Kind
	}

	// Paginator yields the next source for the same processor and
	// input, or nil when pagination is exhausted.
	Paginator interface {
		NextSource(ctx *Context) *fetch.Request
	}

	// Dependent declares named units fetched and processed before the
	// owning unit; their outcomes appear in Context.Deps.
	Dependent interface {
		Dependencies() map[string]*Unit
	}

	// ErrorResponder lets a processor turn a fetch failure into an
	// outcome instead of a skipped branch.
	ErrorResponder interface {
		ProcessError(ctx *Context, err error) (Outcome, error)
	}

	// ExampleSourcer supplies a default source for single-unit test
	// runs.
	ExampleSourcer interface {
		ExampleSource() *fetch.Request
	}

	// ExampleInputer supplies a default input for single-unit test
	// runs.
	ExampleInputer interface {
		ExampleInput() Record
	}
)

// Pure marks a processor that derives its outcome from input alone and
// never fetches. Embed it in data/combination processors.
type Pure struct{}

func (Pure) pure() {}

type pureMarker interface{ pure() }

// Unit is one schedulable processing step. It is a value: two units
// with equal processor type, source and input are duplicate work
// candidates. A unit is consumed exactly once and never mutated after
// construction, except for Depth which the driver assigns on enqueue.
type Unit struct {
	Proc   any
	Input  Record
	Source *fetch.Request
	Role   Role
	Depth  int

	pagination bool
}

// New builds a unit around proc, which must implement Processor or
// ItemProcessor.
func New(proc any, opts ...UnitOption) *Unit {
	u := &Unit{Proc: proc}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type UnitOption func(*Unit)

func WithInput(input Record) UnitOption {
	return func(u *Unit) {
		u.Input = input
	}
}

func WithSource(rawURL string) UnitOption {
	return func(u *Unit) {
		u.Source = fetch.NewRequest(rawURL)
	}
}

func WithRequest(req *fetch.Request) UnitOption {
	return func(u *Unit) {
		u.Source = req
	}
}

func WithRole(role Role) UnitOption {
	return func(u *Unit) {
		u.Role = role
	}
}

// Name reports the processor's type name, used in logs and errors.
func (u *Unit) Name() string {
	if u.Proc == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(u.Proc)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

func (u *Unit) String() string {
	s := u.Name() + "("
	if len(u.Input) > 0 {
		keys := make([]string, 0, len(u.Input))
		for k := range u.Input {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s += fmt.Sprintf("%s=%v ", k, u.Input[k])
		}
	}
	if u.Source != nil {
		s += "source=" + u.Source.URL
	}
	return s + ")"
}

// Pagination reports whether this unit was produced by a Paginator; the
// driver keeps such units at their parent's depth.
func (u *Unit) Pagination() bool {
	return u.pagination
}

// Pure reports whether the unit's processor opted out of fetching.
func (u *Unit) Pure() bool {
	_, ok := u.Proc.(pureMarker)
	return ok
}

// Key is the unit's duplicate-work identity: a digest of processor
// type, source and input.
func (u *Unit) Key() string {
	h := md5.New()
	io.WriteString(h, u.Name())
	if u.Source != nil {
		io.WriteString(h, u.Source.Method)
		io.WriteString(h, u.Source.URL)
	}
	if len(u.Input) > 0 {
		// map marshaling sorts keys, so the digest is stable; inputs
		// that cannot marshal fall back to their Go representation
		if b, err := json.Marshal(u.Input); err == nil {
			h.Write(b)
		} else {
			fmt.Fprintf(h, "%#v", u.Input)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ResolveSource resolves the unit's fetch request: the declared source,
// then the Sourcer hook, then a "url" field on the input. Pure units
// resolve to nil without error; anything else without a source is a
// ConfigurationError, raised before any fetch is attempted.
func (u *Unit) ResolveSource() (*fetch.Request, error) {
	if u.Pure() {
		return nil, nil
	}
	if u.Source != nil {
		return u.Source, nil
	}
	if s, ok := u.Proc.(Sourcer); ok {
		req, err := s.SourceFromInput(u.Input)
		if err != nil {
			return nil, &ConfigurationError{Unit: u.Name(), Reason: err.Error()}
		}
		if req != nil {
			return req, nil
		}
	}
	if raw, ok := u.Input["url"].(string); ok && raw != "" {
		return fetch.NewRequest(raw), nil
	}
	return nil, &ConfigurationError{
		Unit:   u.Name(),
		Reason: "no source declared and none resolvable from input",
	}
}

// ContentKind reports the view representation the unit's document
// should be parsed into. HTML is the default.
func (u *Unit) ContentKind() view.Kind {
	if ck, ok := u.Proc.(ContentKinder); ok {
		return ck.ContentKind()
	}
	return view.KindHTML
}
