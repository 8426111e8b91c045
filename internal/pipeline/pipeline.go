package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/nowcast-alerts/internal/domain"
	"github.com/couchcryptid/nowcast-alerts/internal/observability"
)

// Fetcher retrieves the raw feed document.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// Transformer turns a feed document into a snapshot. It returns a usable
// snapshot alongside a *domain.ParseError for malformed documents.
type Transformer interface {
	Transform(ctx context.Context, doc string) (*domain.Snapshot, error)
}

// Sink receives every completed snapshot.
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap *domain.Snapshot) error
}

const (
	defaultInterval = 5 * time.Minute
	defaultTimeout  = 30 * time.Second
)

// Poller runs the fetch-parse-project cycle on a fixed interval and keeps the
// latest snapshot.
type Poller struct {
	fetcher     Fetcher
	transformer Transformer
	sinks       []Sink
	store       Store
	group       singleflight.Group
	source      string
	interval    time.Duration
	timeout     time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	lastErr     atomic.Pointer[cycleError]
}

type cycleError struct {
	err error
	at  time.Time
}

// Option configures a Poller.
type Option func(*Poller)

// WithSinks adds sinks that receive each snapshot after it is stored.
func WithSinks(sinks ...Sink) Option {
	return func(p *Poller) { p.sinks = append(p.sinks, sinks...) }
}

// WithInterval sets the time between cycles.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithTimeout bounds each fetch independently of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) { p.timeout = d }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithSource names the feed being polled. Cycles for the same source never
// overlap.
func WithSource(source string) Option {
	return func(p *Poller) { p.source = source }
}

// New creates a Poller with the given stages and observability.
func New(f Fetcher, t Transformer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Poller {
	p := &Poller{
		fetcher:     f,
		transformer: t,
		source:      "default",
		interval:    defaultInterval,
		timeout:     defaultTimeout,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a cycle has completed, or an error
// describing why the service is not yet ready.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		if last := p.lastErr.Load(); last != nil {
			return fmt.Errorf("no feed snapshot yet: %w", last.err)
		}
		return errors.New("no feed snapshot yet")
	}
	return nil
}

// Snapshot returns the latest completed snapshot, or nil.
func (p *Poller) Snapshot() *domain.Snapshot {
	return p.store.Load()
}

// LastError returns when the most recent cycle failed and why, or a nil
// error if that cycle succeeded.
func (p *Poller) LastError() (time.Time, error) {
	if last := p.lastErr.Load(); last != nil {
		return last.at, last.err
	}
	return time.Time{}, nil
}

// Run polls immediately and then on every tick until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "source", p.source, "interval", p.interval, "timeout", p.timeout)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	// Errors are logged and recorded by the cycle itself.
	_, _ = p.Refresh(ctx)
}

// Refresh runs a cycle now. A call made while a cycle for the same source is
// in flight waits for that cycle and returns its result. The cycle is shared,
// so it ignores the starting caller's cancellation; each fetch is still bound
// by the poll timeout.
func (p *Poller) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	v, err, shared := p.group.Do(p.source, func() (any, error) {
		return p.cycle(context.WithoutCancel(ctx))
	})
	if shared {
		p.logger.Debug("joined in-flight cycle", "source", p.source)
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

// cycle performs one fetch-parse-project pass. A fetch failure keeps the
// previous snapshot; a parse failure replaces it with an empty one.
func (p *Poller) cycle(ctx context.Context) (*domain.Snapshot, error) {
	cycleID := uuid.NewString()
	logger := p.logger.With("cycle_id", cycleID)
	start := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	doc, err := p.fetcher.Fetch(fetchCtx)
	cancel()
	p.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := domain.FetchErrorKindOf(err)
		p.metrics.FetchErrors.WithLabelValues(kind).Inc()
		p.metrics.Cycles.WithLabelValues("fetch_error").Inc()
		p.lastErr.Store(&cycleError{err: err, at: p.clock.Now()})
		logger.Error("fetch feed failed, keeping previous snapshot",
			"error", err,
			"kind", kind,
			"source", p.source,
		)
		return nil, err
	}

	snap, err := p.transformer.Transform(ctx, doc)
	outcome := "success"
	if err != nil {
		var perr *domain.ParseError
		if !errors.As(err, &perr) || snap == nil {
			p.metrics.Cycles.WithLabelValues("error").Inc()
			p.lastErr.Store(&cycleError{err: err, at: p.clock.Now()})
			logger.Error("transform feed failed", "error", err)
			return nil, err
		}
		outcome = "parse_error"
		p.metrics.ParseErrors.Inc()
		logger.Warn("feed is not well-formed, publishing empty result", "error", err, "bytes", len(doc))
	}

	snap.CycleID = cycleID
	snap.UpdatedAt = p.clock.Now()
	p.store.Swap(snap)
	p.ready.Store(true)
	if outcome == "success" {
		p.lastErr.Store(nil)
	} else {
		p.lastErr.Store(&cycleError{err: err, at: snap.UpdatedAt})
	}
	p.metrics.Cycles.WithLabelValues(outcome).Inc()
	p.record(snap)

	if snap.Result.Skipped > 0 {
		logger.Warn("skipped warning elements without usable fields", "skipped", snap.Result.Skipped)
	}
	logger.Info("poll cycle complete",
		"alerts", len(snap.Result.Alerts),
		"active", len(snap.Result.ActiveAlerts),
		"regions", len(snap.States),
		"duration", time.Since(start),
	)

	p.publish(ctx, logger, snap)
	return snap, nil
}

func (p *Poller) record(snap *domain.Snapshot) {
	p.metrics.Skipped.Add(float64(snap.Result.Skipped))
	p.metrics.AlertsParsed.Set(float64(len(snap.Result.Alerts)))
	p.metrics.AlertsActive.Set(float64(len(snap.Result.ActiveAlerts)))
	for _, s := range snap.States {
		v := 0.0
		if s.IsActive {
			v = 1
		}
		p.metrics.RegionActive.WithLabelValues(s.Region).Set(v)
	}
}

// publish hands the snapshot to every sink. Sink failures are logged and do
// not affect the stored snapshot.
func (p *Poller) publish(ctx context.Context, logger *slog.Logger, snap *domain.Snapshot) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			p.metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			logger.Error("publish snapshot failed", "sink", s.Name(), "error", err)
		}
	}
}
