package engine

import (
	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
	"go.uber.org/zap"
)

type Option func(opts *options)

type options struct {
	WorkCount int
	Fetcher   fetch.Fetcher
	Sink      storage.Sink
	Logger    *zap.Logger
	Seeds     []*page.Unit
	MaxDepth  int
	MaxUnits  int64
	Strict    bool
	Reload    bool
	scheduler Scheduler
}

var defaultOptions = options{
	WorkCount: 1,
	Logger:    zap.NewNop(),
	Sink:      storage.Discard(),
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher fetch.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithSink(s storage.Sink) Option {
	return func(opts *options) {
		opts.Sink = s
	}
}

func WithWorkCount(c int) Option {
	return func(opts *options) {
		opts.WorkCount = c
	}
}

func WithSeeds(seeds []*page.Unit) Option {
	return func(opts *options) {
		opts.Seeds = seeds
	}
}

// WithMaxDepth refuses to enqueue units beyond depth; such branches
// count as skipped-by-depth, not errored. Zero means unbounded.
func WithMaxDepth(depth int) Option {
	return func(opts *options) {
		opts.MaxDepth = depth
	}
}

// WithMaxUnits bounds the total units scheduled per run. Zero means
// unbounded.
func WithMaxUnits(n int64) Option {
	return func(opts *options) {
		opts.MaxUnits = n
	}
}

// WithStrict aborts the run on the first branch error instead of
// degrading the branch to skipped.
func WithStrict(strict bool) Option {
	return func(opts *options) {
		opts.Strict = strict
	}
}

// WithReload disables the visited-set dedup so identical units are
// refetched.
func WithReload(reload bool) Option {
	return func(opts *options) {
		opts.Reload = reload
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(opts *options) {
		opts.scheduler = scheduler
	}
}
