package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// WatcherConfig holds reconnection settings.
type WatcherConfig struct {
	Client            ClientConfig
	ReconnectBaseWait time.Duration // First retry delay (default: 1s)
	ReconnectMaxWait  time.Duration // Backoff ceiling (default: 30s)
}

// Watcher keeps a subscription alive across disconnects.
type Watcher struct {
	cfg    WatcherConfig
	logger *slog.Logger

	connects atomic.Int64
}

// NewWatcher creates a watcher.
func NewWatcher(cfg WatcherConfig, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = time.Second
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = 30 * cfg.ReconnectBaseWait
	}
	return &Watcher{cfg: cfg, logger: logger}
}

// Connects returns the number of successful connections so far.
func (w *Watcher) Connects() int64 {
	return w.connects.Load()
}

// Run calls handle for every received snapshot until ctx is cancelled.
// Dropped connections are re-established with exponential backoff.
func (w *Watcher) Run(ctx context.Context, handle func(Update)) error {
	wait := w.cfg.ReconnectBaseWait

	for {
		c := NewClient(w.cfg.Client, w.logger)
		if err := c.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("connect failed", "url", w.cfg.Client.URL, "error", err, "retry_in", wait)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}

			wait *= 2
			if wait > w.cfg.ReconnectMaxWait {
				wait = w.cfg.ReconnectMaxWait
			}
			continue
		}

		w.connects.Add(1)
		w.logger.Info("connected", "url", w.cfg.Client.URL)
		wait = w.cfg.ReconnectBaseWait

		if w.consume(ctx, c, handle) {
			c.Close()
			return nil
		}
		c.Close()
		w.logger.Info("connection lost, reconnecting", "retry_in", wait)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// consume pumps one client until it stops. It reports whether ctx ended.
func (w *Watcher) consume(ctx context.Context, c Client, handle func(Update)) bool {
	for {
		select {
		case <-ctx.Done():
			return true

		case u := <-c.Updates():
			handle(u)

		case err := <-c.Errors():
			var de *DecodeError
			if errors.As(err, &de) {
				w.logger.Warn("skipping frame", "error", err)
				continue
			}
			w.logger.Warn("connection error", "error", err)

		case <-c.Done():
			for {
				select {
				case u := <-c.Updates():
					handle(u)
				default:
					return false
				}
			}
		}
	}
}
