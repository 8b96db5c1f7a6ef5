package limiter

import (
	"context"
	"sync"
	"time"

	"github.com/juju/ratelimit"
	"golang.org/x/time/rate"
)

// Gate is the single synchronization point for outbound fetch dispatch.
// Every fetch, regardless of originating unit or worker, must pass
// Wait before dispatch and call Done once the request has completed.
type Gate struct {
	mu      sync.Mutex
	origins map[string]*originGate

	interval    time.Duration
	burst       int
	concurrency int
	windows     []window
	global      *ratelimit.Bucket
}

type window struct {
	events int
	period time.Duration
}

type originGate struct {
	lim   RateLimiter
	slots chan struct{}
}

type GateOption func(*Gate)

// WithOriginInterval enforces a minimum interval between requests to
// the same origin.
func WithOriginInterval(interval time.Duration) GateOption {
	return func(g *Gate) {
		g.interval = interval
	}
}

// WithOriginWindow adds a wider per-origin limit (at most events
// requests per period) composed with the base interval limit.
func WithOriginWindow(events int, period time.Duration) GateOption {
	return func(g *Gate) {
		g.windows = append(g.windows, window{events: events, period: period})
	}
}

// WithOriginConcurrency caps in-flight requests per origin.
func WithOriginConcurrency(n int) GateOption {
	return func(g *Gate) {
		g.concurrency = n
	}
}

// WithGlobalBucket adds a token bucket shared across all origins.
func WithGlobalBucket(ratePerSec float64, capacity int64) GateOption {
	return func(g *Gate) {
		g.global = ratelimit.NewBucketWithRate(ratePerSec, capacity)
	}
}

func NewGate(opts ...GateOption) *Gate {
	g := &Gate{
		origins:  make(map[string]*originGate),
		interval: time.Second,
		burst:    1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) originFor(origin string) *originGate {
	g.mu.Lock()
	defer g.mu.Unlock()
	og, ok := g.origins[origin]
	if !ok {
		lims := []RateLimiter{rate.NewLimiter(rate.Every(g.interval), g.burst)}
		for _, w := range g.windows {
			lims = append(lims, rate.NewLimiter(Per(w.events, w.period), w.events))
		}
		og = &originGate{lim: Multi(lims...)}
		if g.concurrency > 0 {
			og.slots = make(chan struct{}, g.concurrency)
		}
		g.origins[origin] = og
	}
	return og
}

// Wait blocks until a request to origin is permitted. On success the
// caller must call Done(origin) when the request finishes.
func (g *Gate) Wait(ctx context.Context, origin string) error {
	og := g.originFor(origin)
	if og.slots != nil {
		select {
		case og.slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if g.global != nil {
		if d := g.global.Take(1); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				g.release(og)
				return ctx.Err()
			}
		}
	}
	if err := og.lim.Wait(ctx); err != nil {
		g.release(og)
		return err
	}
	return nil
}

func (g *Gate) Done(origin string) {
	g.release(g.originFor(origin))
}

func (g *Gate) release(og *originGate) {
	if og.slots != nil {
		<-og.slots
	}
}
