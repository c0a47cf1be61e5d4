package replication

import (
	"context"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
)

// DefaultInterval is the background sync period.
const DefaultInterval = 15 * time.Minute

// Syncer is the part of Engine the scheduler drives.
type Syncer interface {
	SyncAll(ctx context.Context, owner string) (*Report, error)
}

// Scheduler runs SyncAll periodically and on demand. Errors are logged and
// never surfaced; the next tick retries.
type Scheduler struct {
	syncer   Syncer
	owner    string
	interval time.Duration
	trigger  chan struct{}
	log      logging.Logger
}

func NewScheduler(s Syncer, owner string, interval time.Duration, log logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		syncer:   s,
		owner:    owner,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		log:      log.With("module", "scheduler"),
	}
}

// Trigger requests a pass as soon as possible. Requests made while one is
// already pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, "timer")
		case <-s.trigger:
			s.runOnce(ctx, "trigger")
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, reason string) {
	rep, err := s.syncer.SyncAll(ctx, s.owner)
	if err != nil {
		s.log.Error(ctx, "background sync failed", "reason", reason, "error", err)
		return
	}
	if rep != nil && rep.Ran {
		s.log.Info(ctx, "background sync done", "reason", reason, "summary", rep.String())
	}
}
