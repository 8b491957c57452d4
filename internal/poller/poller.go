package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/everline-data/internal/model"
	"github.com/rickgao/everline-data/internal/query"
)

// ErrAlreadyRunning is returned by Start when the poll loop is active.
var ErrAlreadyRunning = errors.New("poller already running")

// Fetcher retrieves the current train list.
type Fetcher interface {
	FetchTrains(ctx context.Context) ([]model.TrainRecord, error)
}

// SnapshotHandler receives every newly published snapshot.
type SnapshotHandler interface {
	HandleSnapshot(snapshot *model.Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(*model.Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(s *model.Snapshot) error {
	return f(s)
}

// Observer is told about the outcome of every fetch attempt.
type Observer interface {
	ObserveFetch(duration time.Duration, snapshot *model.Snapshot, err error)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 1s)
	Timeout  time.Duration // Per-fetch timeout (default: 3s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
		Timeout:  3 * time.Second,
	}
}

// Option configures a Poller.
type Option func(*Poller)

// WithObserver attaches a fetch observer.
func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observer = o
	}
}

// Poller periodically fetches train positions and keeps the latest snapshot.
type Poller struct {
	cfg      Config
	client   Fetcher
	handlers []SnapshotHandler
	observer Observer
	logger   *slog.Logger

	latest  atomic.Pointer[model.Snapshot]
	fetchMu sync.Mutex // serializes writers so swaps follow fetch completion order

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new Poller. handler may be nil.
func New(cfg Config, client Fetcher, handler SnapshotHandler, logger *slog.Logger, opts ...Option) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	p := &Poller{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
	if handler != nil {
		p.handlers = append(p.handlers, handler)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddHandler registers another snapshot handler. Call before Start.
func (p *Poller) AddHandler(h SnapshotHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, h)
}

// Start begins the polling loop. The loop runs until ctx is cancelled or
// Stop is called; calling Start again while it runs returns ErrAlreadyRunning.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.run(loopCtx)

	p.logger.Info("snapshot poller started",
		"interval", p.cfg.Interval,
		"timeout", p.cfg.Timeout,
	)

	return nil
}

// Stop cancels the polling loop and waits for it to exit.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("snapshot poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the poll loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Latest returns the most recent snapshot, or nil if no fetch has succeeded.
// The returned snapshot must not be modified.
func (p *Poller) Latest() *model.Snapshot {
	return p.latest.Load()
}

// FetchOnce performs one synchronous fetch and reports whether it succeeded.
func (p *Poller) FetchOnce(ctx context.Context) bool {
	if err := p.fetch(ctx); err != nil {
		p.logger.Warn("fetch failed", "error", err)
		return false
	}
	return true
}

// run is the main polling loop.
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.cancel = nil
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if err := p.fetch(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("poll failed, keeping previous snapshot", "error", err)
	}
}

// fetch retrieves one train list and publishes it as the new snapshot.
func (p *Poller) fetch(parent context.Context) error {
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	ctx, cancel := context.WithTimeout(parent, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	records, err := p.client.FetchTrains(ctx)
	if err != nil {
		// A cancelled caller is shutdown, not an upstream failure.
		// Per-fetch timeouts still count.
		if parent.Err() == nil {
			p.observe(time.Since(start), nil, err)
		}
		return err
	}

	fetchedAt := time.Now()
	if prev := p.latest.Load(); prev != nil && !fetchedAt.After(prev.FetchedAt) {
		// Keep FetchedAt strictly increasing across swaps.
		fetchedAt = prev.FetchedAt.Add(time.Nanosecond)
	}

	snap := model.NewSnapshot(query.WithDriveRates(records), fetchedAt)
	p.latest.Store(snap)
	p.observe(time.Since(start), snap, nil)

	p.logger.Debug("snapshot updated",
		"id", snap.ID,
		"trains", len(snap.Records),
		"duration", time.Since(start),
	)

	p.mu.Lock()
	handlers := p.handlers
	p.mu.Unlock()

	for _, h := range handlers {
		if err := h.HandleSnapshot(snap); err != nil {
			p.logger.Warn("snapshot handler failed", "id", snap.ID, "error", err)
		}
	}
	return nil
}

func (p *Poller) observe(d time.Duration, snap *model.Snapshot, err error) {
	if p.observer != nil {
		p.observer.ObserveFetch(d, snap, err)
	}
}
