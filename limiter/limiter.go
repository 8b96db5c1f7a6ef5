package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

type RateLimiter interface {
	Wait(ctx context.Context) error
	Limit() rate.Limit
}

// Per converts an event count over a duration into a rate.Limit. A
// non-positive count means unlimited.
func Per(eventCount int, duration time.Duration) rate.Limit {
	if eventCount <= 0 {
		return rate.Inf
	}
	return rate.Every(duration / time.Duration(eventCount))
}

type multiLimiter struct {
	limiters []RateLimiter
}

// Multi combines limiters; waiting on the result waits on all of them,
// most restrictive first. With no limiters it is unlimited.
func Multi(limiters ...RateLimiter) RateLimiter {
	if len(limiters) == 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)
	return &multiLimiter{limiters: limiters}
}

func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *multiLimiter) Limit() rate.Limit {
	return l.limiters[0].Limit()
}
