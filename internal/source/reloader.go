package source

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Reloader rebuilds the network from a source periodically using a
// time.Ticker and hands each successful build to apply. Failed loads are
// logged and the previous network stays in place.
type Reloader struct {
	src      Source
	capacity int
	interval time.Duration
	apply    func(*Network)
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// NewReloader creates a reloader. interval must be at least one minute.
func NewReloader(src Source, capacity int, interval time.Duration, apply func(*Network), logger *slog.Logger) (*Reloader, error) {
	if interval < time.Minute {
		return nil, fmt.Errorf("reload interval must be at least 1m, got %s", interval)
	}
	return &Reloader{
		src:      src,
		capacity: capacity,
		interval: interval,
		apply:    apply,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins the reload loop. Call Stop() to terminate.
func (r *Reloader) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(r.doneCh)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.logger.Info("network reloader started", "source", r.src.Name(), "interval", r.interval.String())

		for {
			select {
			case <-ticker.C:
				r.ReloadOnce(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ReloadOnce performs a single load and apply. It reports whether the
// network was replaced.
func (r *Reloader) ReloadOnce(ctx context.Context) bool {
	n, err := Load(ctx, r.src, r.capacity)
	if err != nil {
		r.logger.Error("network reload failed", "source", r.src.Name(), "error", err)
		return false
	}
	r.apply(n)
	r.logger.Info("network reloaded", "source", r.src.Name(),
		"stations", n.Graph.Len(), "connections", n.Graph.EdgeCount())
	return true
}

// Stop halts the reloader and waits for it to finish. It may be called
// more than once, and before Start.
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	if r.started.Load() {
		<-r.doneCh
	}
}
