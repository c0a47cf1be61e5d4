// Package reachability tells the sync engine whether the remote is worth
// calling. Being offline is the normal state of an offline-first client, so
// this is a hint, not a guarantee: calls may still fail with
// common.ErrUnreachable.
package reachability

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
)

// Signal reports the current connectivity state.
type Signal interface {
	IsOnline() bool
}

// Static is a fixed Signal.
type Static bool

func (s Static) IsOnline() bool { return bool(s) }

// Pinger is any remote that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultInterval is the probe period used when none is configured.
const DefaultInterval = 3 * time.Second

// Watcher pings the remote on an interval and records the outcome.
type Watcher struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	online   atomic.Bool
	log      logging.Logger
	// onChange, when set, is called after every online/offline transition.
	onChange func(online bool)
}

// NewWatcher starts offline until the first probe succeeds. A non-positive
// interval falls back to DefaultInterval.
func NewWatcher(p Pinger, interval time.Duration, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		pinger:   p,
		interval: interval,
		timeout:  3 * time.Second,
		log:      log.With("module", "reachability"),
	}
}

// OnChange registers fn to run on transitions. Call before Run.
func (w *Watcher) OnChange(fn func(online bool)) { w.onChange = fn }

func (w *Watcher) IsOnline() bool { return w.online.Load() }

// Check probes once and returns the new state.
func (w *Watcher) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.pinger.Ping(ctx)
	cancel()

	online := err == nil
	if prev := w.online.Swap(online); prev != online {
		if online {
			w.log.Info(ctx, "remote reachable, switched to online mode")
		} else {
			w.log.Info(ctx, "remote unreachable, switched to offline mode", "error", err)
		}
		if w.onChange != nil {
			w.onChange(online)
		}
	}
	return online
}

// Run probes immediately and then every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
