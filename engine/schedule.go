package engine

import (
	"context"

	"github.com/wenzapen/trowel/page"
)

// Scheduler is the pending-unit queue between the driver and its
// workers. Units are produced lazily: each pull may append new units.
type Scheduler interface {
	Schedule(ctx context.Context)
	Push(ctx context.Context, units ...*page.Unit)
	Pull(ctx context.Context) (*page.Unit, error)
}

// Schedule is the default breadth-first scheduler: an unbounded slice
// queue pumped between an inbound and an outbound channel by a single
// goroutine, so Push never blocks on a busy worker.
type Schedule struct {
	unitChan   chan *page.Unit
	workerChan chan *page.Unit
	queue      []*page.Unit
}

func NewSchedule() *Schedule {
	return &Schedule{
		unitChan:   make(chan *page.Unit),
		workerChan: make(chan *page.Unit),
	}
}

func (s *Schedule) Schedule(ctx context.Context) {
	for {
		var u *page.Unit
		var out chan *page.Unit
		if len(s.queue) > 0 {
			u = s.queue[0]
			out = s.workerChan
		}
		select {
		case <-ctx.Done():
			return
		case out <- u:
			s.queue = s.queue[1:]
		case nu := <-s.unitChan:
			s.queue = append(s.queue, nu)
		}
	}
}

func (s *Schedule) Push(ctx context.Context, units ...*page.Unit) {
	for _, u := range units {
		select {
		case s.unitChan <- u:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Schedule) Pull(ctx context.Context) (*page.Unit, error) {
	select {
	case u := <-s.workerChan:
		return u, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
