// Package engine drives a run: it walks the lazily expanding unit
// graph breadth-first, fetching documents through the shared rate
// gate, resolving chain outcomes and streaming finished records to the
// output sink as branches complete.
package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/wenzapen/trowel/fetch"
	"github.com/wenzapen/trowel/page"
	"github.com/wenzapen/trowel/storage"
	"github.com/wenzapen/trowel/view"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Crawler struct {
	visited     map[string]bool
	visitedLock sync.Mutex

	pending   atomic.Int64
	scheduled atomic.Int64
	augPhase  atomic.Bool
	drainCh   chan struct{}

	options
}

func NewEngine(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	c := &Crawler{options: options}
	c.visited = make(map[string]bool, 100)
	if c.scheduler == nil {
		c.scheduler = NewSchedule()
	}
	return c
}

// Run walks the chain from the given roots (plus any seeds configured
// on the engine) until the queue is empty, a fatal error aborts it, or
// ctx is cancelled. Augmentation-role roots are held until the primary
// queue drains and then run as a second phase. The manifest is
// finalized to the sink on every exit path, so records emitted before
// an abort are never lost.
func (c *Crawler) Run(ctx context.Context, roots ...*page.Unit) (*Manifest, error) {
	m := newManifest()
	seeds := make([]*page.Unit, 0, len(c.Seeds)+len(roots))
	seeds = append(seeds, c.Seeds...)
	seeds = append(seeds, roots...)

	var primary, augmentation []*page.Unit
	for _, u := range seeds {
		if u.Role == page.RoleAugmentation {
			augmentation = append(augmentation, u)
		} else {
			primary = append(primary, u)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.scheduler.Schedule(runCtx)

	g, gctx := errgroup.WithContext(runCtx)
	for i := 0; i < c.workCount(); i++ {
		g.Go(func() error {
			return c.worker(gctx, m)
		})
	}

	err := c.drain(gctx, primary)
	if err == nil && len(augmentation) > 0 {
		c.augPhase.Store(true)
		err = c.drain(gctx, augmentation)
	}
	cancel()
	werr := g.Wait()
	m.finish()

	if ferr := c.Sink.Finalize(m.Summary()); ferr != nil {
		c.Logger.Error("finalize sink failed", zap.Error(ferr))
	}

	switch {
	case werr != nil && !errors.Is(werr, context.Canceled):
		return m, werr
	case ctx.Err() != nil:
		return m, ctx.Err()
	case err != nil && !errors.Is(err, context.Canceled):
		return m, err
	default:
		return m, nil
	}
}

// RunOnce processes exactly one unit and returns its immediate chain
// outcome: records are not sent to the sink and continuations are not
// scheduled or fetched. An override source replaces the unit's own;
// otherwise a missing source falls back to the processor's example
// hooks. This exists for fast iteration on a single page definition.
func (c *Crawler) RunOnce(ctx context.Context, u *page.Unit, override *fetch.Request) (page.Outcome, error) {
	cp := *u
	if override != nil {
		cp.Source = override
	}
	if cp.Source == nil && !cp.Pure() {
		if es, ok := cp.Proc.(page.ExampleSourcer); ok {
			cp.Source = es.ExampleSource()
		}
	}
	if len(cp.Input) == 0 {
		if ei, ok := cp.Proc.(page.ExampleInputer); ok {
			cp.Input = ei.ExampleInput()
		}
	}
	return c.execute(ctx, &cp, newManifest())
}

func (c *Crawler) workCount() int {
	if c.WorkCount < 1 {
		return 1
	}
	return c.WorkCount
}

// drain seeds one phase and blocks until its subtree is exhausted.
func (c *Crawler) drain(ctx context.Context, units []*page.Unit) error {
	if len(units) == 0 {
		return nil
	}
	c.drainCh = make(chan struct{})
	c.pending.Store(int64(len(units)))
	c.scheduled.Add(int64(len(units)))
	c.scheduler.Push(ctx, units...)
	select {
	case <-c.drainCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Crawler) worker(ctx context.Context, m *Manifest) error {
	for {
		u, err := c.scheduler.Pull(ctx)
		if err != nil {
			return nil
		}
		perr := c.process(ctx, u, m)
		if c.pending.Add(-1) == 0 && perr == nil {
			close(c.drainCh)
		}
		if perr != nil {
			return perr
		}
	}
}

func (c *Crawler) process(ctx context.Context, u *page.Unit, m *Manifest) error {
	logger := c.Logger.With(zap.String("page", u.Name()), zap.Int("depth", u.Depth))

	if !c.Reload {
		if c.hasVisited(u) {
			logger.Debug("unit already visited")
			m.incSkipped()
			return nil
		}
		c.storeVisited(u)
	}

	out, err := c.execute(ctx, u, m)
	if err != nil {
		return c.branchFailed(u, m, logger, err)
	}

	for _, rec := range out.Records {
		if err := c.emit(rec); err != nil {
			logger.Error("emit record failed", zap.Error(err))
			m.incErrored()
			if c.Strict {
				return err
			}
			continue
		}
		m.incEmitted()
	}
	c.enqueueChildren(ctx, u, out.Next, m)
	return nil
}

// execute performs the fetch → parse → resolve sequence for one unit.
func (c *Crawler) execute(ctx context.Context, u *page.Unit, m *Manifest) (page.Outcome, error) {
	req, err := u.ResolveSource()
	if err != nil {
		return page.Outcome{}, err
	}

	var v view.View
	if req != nil {
		if c.Fetcher == nil {
			return page.Outcome{}, &page.ConfigurationError{
				Unit:   u.Name(),
				Reason: "unit requires a fetch but no fetcher is configured",
			}
		}
		m.incFetched()
		resp, ferr := c.Fetcher.Fetch(ctx, req)
		if fe := fetchFailure(u, req, resp, ferr); fe != nil {
			if er, ok := u.Proc.(page.ErrorResponder); ok {
				ectx := &page.Context{
					Input:   u.Input,
					Request: req,
					Depth:   u.Depth,
					Logger:  c.Logger.With(zap.String("page", u.Name())),
				}
				return er.ProcessError(ectx, fe)
			}
			return page.Outcome{}, fe
		}
		v, err = view.Build(u.ContentKind(), resp.Body)
		if err != nil {
			return page.Outcome{}, &page.ExtractionError{Unit: u.Name(), Source: req.URL, Err: err}
		}
	}

	deps, err := c.resolveDependencies(ctx, u, m)
	if err != nil {
		return page.Outcome{}, err
	}
	return page.Resolve(u, v, deps, c.Logger)
}

// Dependencies are fetched through the same gate and processed inline,
// before the owning unit; a failed dependency fails the owning unit.
func (c *Crawler) resolveDependencies(ctx context.Context, u *page.Unit, m *Manifest) (map[string]page.Outcome, error) {
	dep, ok := u.Proc.(page.Dependent)
	if !ok {
		return nil, nil
	}
	units := dep.Dependencies()
	if len(units) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]page.Outcome, len(units))
	for _, name := range names {
		du := units[name]
		du.Depth = u.Depth
		out, err := c.execute(ctx, du, m)
		if err != nil {
			return nil, &page.ExtractionError{Unit: u.Name(), Err: err}
		}
		deps[name] = out
	}
	return deps, nil
}

func (c *Crawler) enqueueChildren(ctx context.Context, u *page.Unit, children []*page.Unit, m *Manifest) {
	for _, child := range children {
		if child.Pagination() {
			child.Depth = u.Depth
		} else {
			child.Depth = u.Depth + 1
		}
		if c.MaxDepth > 0 && child.Depth > c.MaxDepth {
			c.Logger.Debug("refusing to enqueue beyond max depth",
				zap.String("page", child.Name()), zap.Int("depth", child.Depth))
			m.incSkippedByDepth()
			continue
		}
		if c.MaxUnits > 0 && c.scheduled.Add(1) > c.MaxUnits {
			m.incSkipped()
			continue
		}
		c.pending.Add(1)
		c.scheduler.Push(ctx, child)
	}
}

func (c *Crawler) branchFailed(u *page.Unit, m *Manifest, logger *zap.Logger, err error) error {
	m.incErrored()
	var cfg *page.ConfigurationError
	fatal := c.Strict || (errors.As(err, &cfg) && u.Depth == 0)
	if fatal {
		logger.Error("fatal branch error", zap.Error(err))
		return err
	}
	logger.Warn("branch skipped", zap.Error(err))
	return nil
}

func (c *Crawler) emit(rec page.Record) error {
	if c.augPhase.Load() {
		if ps, ok := c.Sink.(storage.PatchSink); ok {
			return ps.EmitPatch(rec)
		}
	}
	return c.Sink.Emit(rec)
}

func fetchFailure(u *page.Unit, req *fetch.Request, resp *fetch.Response, err error) *page.FetchError {
	if err == nil && resp != nil && resp.Status == fetch.StatusOK {
		return nil
	}
	status := fetch.StatusTransportError
	if err == nil && resp != nil {
		status = resp.Status
	}
	return &page.FetchError{Unit: u.Name(), Source: req.URL, Status: status, Err: err}
}

func (c *Crawler) hasVisited(u *page.Unit) bool {
	c.visitedLock.Lock()
	defer c.visitedLock.Unlock()
	return c.visited[u.Key()]
}

func (c *Crawler) storeVisited(units ...*page.Unit) {
	c.visitedLock.Lock()
	defer c.visitedLock.Unlock()
	for _, u := range units {
		c.visited[u.Key()] = true
	}
}
