// Package storage defines the output sink boundary. Sinks receive
// records in completion order, which is not enqueue order when the run
// is parallelized; a sink needing a stable order must impose it itself.
package storage

import (
	"time"

	"github.com/wenzapen/trowel/page"
)

// Summary is the finalized run manifest handed to the sink.
type Summary struct {
	RunID          string
	Start          time.Time
	End            time.Time
	Fetched        int64
	Emitted        int64
	Errored        int64
	Skipped        int64
	SkippedByDepth int64
}

// Sink receives the streamed record output of one run. Emit is called
// once per finished record; Finalize exactly once at run end, success
// or abort, and must tolerate zero records.
type Sink interface {
	Emit(rec page.Record) error
	Finalize(s Summary) error
}

// PatchSink additionally accepts augmentation patches to be merged
// into already-emitted records at finalize time.
type PatchSink interface {
	Sink
	EmitPatch(rec page.Record) error
}

type discard struct{}

func (discard) Emit(page.Record) error { return nil }
func (discard) Finalize(Summary) error { return nil }

// Discard returns a sink that drops everything.
func Discard() Sink {
	return discard{}
}
