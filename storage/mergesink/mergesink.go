// Package mergesink buffers keyed records and applies augmentation
// patches to them at finalize, matched on an explicit join key.
// Records and patches missing the key pass through / are dropped with
// a warning rather than guessed at.
package mergesink

import (
	"sync"

	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
	"go.uber.org/zap"
)

type Sink struct {
	mu      sync.Mutex
	next    storage.Sink
	key     string
	order   []any
	keyed   map[any]page.Record
	unkeyed []page.Record
	patches []page.Record
	logger  *zap.Logger
}

// New wraps next, merging EmitPatch records into Emit records on the
// given join key before forwarding at finalize. Patch fields win.
func New(next storage.Sink, key string, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{
		next:   next,
		key:    key,
		keyed:  make(map[any]page.Record),
		logger: logger,
	}
}

func (s *Sink) Emit(rec page.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := rec[s.key]
	if !ok {
		s.unkeyed = append(s.unkeyed, rec)
		return nil
	}
	if prev, dup := s.keyed[k]; dup {
		// later record wins, but arrival position is kept
		s.keyed[k] = page.Merge(prev, rec)
		return nil
	}
	s.keyed[k] = rec
	s.order = append(s.order, k)
	return nil
}

func (s *Sink) EmitPatch(rec page.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, rec)
	return nil
}

func (s *Sink) Finalize(sum storage.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, patch := range s.patches {
		k, ok := patch[s.key]
		if !ok {
			s.logger.Warn("augmentation patch missing join key",
				zap.String("key", s.key))
			continue
		}
		rec, ok := s.keyed[k]
		if !ok {
			s.logger.Warn("augmentation patch matched no record",
				zap.String("key", s.key), zap.Any("value", k))
			continue
		}
		s.keyed[k] = page.Merge(rec, patch)
	}
	for _, k := range s.order {
		if err := s.next.Emit(s.keyed[k]); err != nil {
			return err
		}
	}
	for _, rec := range s.unkeyed {
		if err := s.next.Emit(rec); err != nil {
			return err
		}
	}
	return s.next.Finalize(sum)
}
