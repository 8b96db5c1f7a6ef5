package engine

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wenzapen/trowel/storage"
)

// Manifest holds the per-run counters. Counters are updated atomically
// across workers and finalized exactly once at run end.
type Manifest struct {
	RunID string
	Start time.Time
	End   time.Time

	fetched        atomic.Int64
	emitted        atomic.Int64
	errored        atomic.Int64
	skipped        atomic.Int64
	skippedByDepth atomic.Int64
}

func newManifest() *Manifest {
	return &Manifest{
		RunID: uuid.NewString(),
		Start: time.Now(),
	}
}

func (m *Manifest) incFetched()        { m.fetched.Add(1) }
func (m *Manifest) incEmitted()        { m.emitted.Add(1) }
func (m *Manifest) incErrored()        { m.errored.Add(1) }
func (m *Manifest) incSkipped()        { m.skipped.Add(1) }
func (m *Manifest) incSkippedByDepth() { m.skippedByDepth.Add(1) }

func (m *Manifest) Fetched() int64        { return m.fetched.Load() }
func (m *Manifest) Emitted() int64        { return m.emitted.Load() }
func (m *Manifest) Errored() int64        { return m.errored.Load() }
func (m *Manifest) Skipped() int64        { return m.skipped.Load() }
func (m *Manifest) SkippedByDepth() int64 { return m.skippedByDepth.Load() }

func (m *Manifest) finish() {
	m.End = time.Now()
}

func (m *Manifest) Summary() storage.Summary {
	return storage.Summary{
		RunID:          m.RunID,
		Start:          m.Start,
		End:            m.End,
		Fetched:        m.Fetched(),
		Emitted:        m.Emitted(),
		Errored:        m.Errored(),
		Skipped:        m.Skipped(),
		SkippedByDepth: m.SkippedByDepth(),
	}
}
