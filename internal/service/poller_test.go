package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingUpdater struct{ n atomic.Int32 }

func (c *countingUpdater) Update(context.Context) { c.n.Add(1) }

func TestPollerService_PollUpdatesEveryPump(t *testing.T) {
	a, b := &countingUpdater{}, &countingUpdater{}
	p := NewPollerService(a, b)

	p.Poll(context.Background())
	p.Poll(context.Background())

	if a.n.Load() != 2 || b.n.Load() != 2 {
		t.Fatalf("updates a=%d b=%d; want 2/2", a.n.Load(), b.n.Load())
	}
}

func TestPollerService_RunStopsOnCancel(t *testing.T) {
	for _, tick := range []time.Duration{time.Millisecond, 0, -time.Second} {
		t.Run(tick.String(), func(t *testing.T) {
			runUntilCancel(t, tick)
		})
	}
}

// runUntilCancel waits for a few ticks, then cancels and expects Run to return.
func runUntilCancel(t *testing.T, tick time.Duration) {
	t.Helper()
	u := &countingUpdater{}
	p := NewPollerService(u)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, tick)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for u.n.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("poller did not tick")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestPollerService_ExpiresTimedRuns(t *testing.T) {
	ctx := context.Background()
	pump, _, clk, _ := newTestPeristaltic(t)
	vac, _, vclk, _ := newTestVacuum(t, nil)
	p := NewPollerService(pump, vac)

	if err := pump.Control(ctx, PumpForward, 1023, 5); err != nil {
		t.Fatal(err)
	}
	if err := vac.Control(ctx, VacuumRunning, 50, 2); err != nil {
		t.Fatal(err)
	}

	clk.Advance(5 * time.Second)
	vclk.Advance(2 * time.Second)
	p.Poll(ctx)

	if pump.Status().State != "stopped" || vac.Status().State != "stopped" {
		t.Fatalf("timed runs not expired: pump=%s vacuum=%s", pump.Status().State, vac.Status().State)
	}
}
