package schedule

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tsawler/folio/model"
	"github.com/tsawler/folio/paginate"
)

// GeometrySource supplies measured block geometry for the current document
// state. It is a read-only oracle queried fresh on every pagination pass; no
// lock is held on it and no geometry is retained between passes.
//
// An error return means geometry is unavailable right now (a rendering
// surface not yet mounted, a document mid-save). That is a normal transient
// state, not a failure: the scheduler keeps its published result and retries
// on the next mutation notification.
type GeometrySource interface {
	BlockGeometries() ([]model.BlockGeometry, error)
}

// SourceFunc adapts a function to the GeometrySource interface.
type SourceFunc func() ([]model.BlockGeometry, error)

// BlockGeometries calls f.
func (f SourceFunc) BlockGeometries() ([]model.BlockGeometry, error) {
	return f()
}

// SchedulerConfig configures a new scheduler.
type SchedulerConfig struct {
	// Page supplies the page capacity used for every pass (default Letter).
	Page model.PageSpec

	// Interval is the coalescing window: a pass runs this long after the
	// first notification of a burst, observing whatever state exists when
	// the window closes (default 16ms, one 60 Hz frame).
	Interval time.Duration

	// Logger receives lifecycle and pass logs (default log.Default()).
	Logger *log.Logger
}

// DefaultSchedulerConfig returns sensible default configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Page:     model.Letter,
		Interval: 16 * time.Millisecond,
		Logger:   log.Default(),
	}
}

// Scheduler coalesces mutation notifications into single pagination passes.
//
// NotifyMutated may be called from any goroutine. Passes run one at a time
// on the scheduler's own goroutine: the geometry source is queried fresh,
// the engine computes breaks, and the result is published to Result and to
// subscribers. The engine is therefore never invoked concurrently.
type Scheduler struct {
	source   GeometrySource
	engine   *paginate.Engine
	page     model.PageSpec
	interval time.Duration
	logger   *log.Logger

	// notify is a one-slot mailbox: a pending notification records that
	// state changed, never how often.
	notify chan struct{}

	mu        sync.RWMutex
	result    model.PaginationResult
	published bool
	passes    uint64
	subs      []func(model.PaginationResult)

	startMu sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a scheduler with the default configuration.
func NewScheduler(source GeometrySource) *Scheduler {
	return NewSchedulerWithConfig(source, DefaultSchedulerConfig())
}

// NewSchedulerWithConfig creates a scheduler with custom configuration.
// Zero-value fields fall back to their defaults.
func NewSchedulerWithConfig(source GeometrySource, cfg SchedulerConfig) *Scheduler {
	if cfg.Page == (model.PageSpec{}) {
		cfg.Page = model.Letter
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 16 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &Scheduler{
		source:   source,
		engine:   paginate.NewEngine(),
		page:     cfg.Page,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		notify:   make(chan struct{}, 1),
	}
}

// Start launches the scheduling loop in its own goroutine and returns
// immediately. The loop runs until ctx is cancelled or Stop is called.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Debug("pagination scheduler started",
		"interval", s.interval, "capacity", s.page.Capacity())
	go s.run(ctx)
}

// Stop halts the scheduling loop and waits for it to exit. A pending
// notification is discarded. Stopping a stopped scheduler is a no-op; the
// scheduler may be started again afterwards.
func (s *Scheduler) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// NotifyMutated records that the document changed. It may be called
// arbitrarily often from any goroutine; it never blocks and has no immediate
// side effect. Notifications arriving while a pass is pending coalesce into
// that pass; notifications arriving while a pass is running trigger one
// follow-up pass.
func (s *Scheduler) NotifyMutated() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Result returns the most recently published result. Before the first
// successful pass it returns the degenerate single-page result, so a caller
// can always render at least one page. The returned value is shared;
// callers must treat it as read-only.
func (s *Scheduler) Result() model.PaginationResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.published {
		return model.PaginationResult{TotalPages: 1}
	}
	return s.result
}

// Passes returns the number of completed pagination passes.
func (s *Scheduler) Passes() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passes
}

// Subscribe registers fn to receive each newly published result. Callbacks
// run on the scheduler goroutine after a successful pass and must return
// quickly; a slow callback delays subsequent passes. Subscribe may be called
// before or after Start.
func (s *Scheduler) Subscribe(fn func(model.PaginationResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// run is the scheduling loop. It owns every pass.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("pagination scheduler stopped", "passes", s.Passes())
			return
		case <-s.notify:
			if !s.holdWindow(ctx) {
				s.logger.Debug("pagination scheduler stopped", "passes", s.Passes())
				return
			}
			s.pass()
		}
	}
}

// holdWindow keeps the coalescing window open, absorbing further
// notifications into the pending pass. It reports false when the context is
// cancelled before the window closes.
func (s *Scheduler) holdWindow(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.notify:
			// Absorbed: the pending pass will observe this mutation.
		case <-timer.C:
			return true
		}
	}
}

// pass runs one pagination pass: query the source, compute breaks, publish.
// Failures never propagate out of the scheduling loop.
func (s *Scheduler) pass() {
	passID := uuid.NewString()

	blocks, err := s.source.BlockGeometries()
	if err != nil {
		// Transient by contract: keep the published result and retry on the
		// next notification.
		s.logger.Debug("geometry source unavailable", "pass", passID, "err", err)
		return
	}

	res, err := s.engine.Paginate(blocks, s.page.Capacity())
	if err != nil {
		s.logger.Warn("pagination rejected geometry; keeping last result",
			"pass", passID, "blocks", len(blocks), "err", err)
		return
	}

	s.mu.Lock()
	s.result = res
	s.published = true
	s.passes++
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	s.logger.Debug("pagination pass complete",
		"pass", passID,
		"blocks", len(blocks),
		"pages", res.TotalPages,
		"breaks", len(res.Breaks))

	for _, fn := range subs {
		fn(res)
	}
}
