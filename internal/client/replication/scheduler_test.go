package replication

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSyncer) SyncAll(ctx context.Context, owner string) (*Report, error) {
	f.calls.Add(1)
	return &Report{Ran: true}, f.err
}

func TestScheduler_TriggerAndTick(t *testing.T) {
	s := &fakeSyncer{err: errors.New("remote exploded")}
	sch := NewScheduler(s, "u1", 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sch.Run(ctx)
		close(done)
	}()

	sch.Trigger()
	require.Eventually(t, func() bool { return s.calls.Load() >= 3 }, time.Second, time.Millisecond,
		"errors must not stop the schedule")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_TriggerCoalesces(t *testing.T) {
	sch := NewScheduler(&fakeSyncer{}, "u1", 0, nil)
	assert.Equal(t, DefaultInterval, sch.interval)

	sch.Trigger()
	sch.Trigger()
	sch.Trigger()
	assert.Len(t, sch.trigger, 1)
}
