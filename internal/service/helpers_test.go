package service

import (
	"sync"
	"testing"
	"time"

	"liquid_handler/internal/driver"
)

const (
	pinStandby driver.Pin = 10
	pinPumpPWM driver.Pin = 13
	pinPumpIN1 driver.Pin = 11
	pinPumpIN2 driver.Pin = 12
	pinVacPWM  driver.Pin = 18
	pinVacIN1  driver.Pin = 15
	pinVacIN2  driver.Pin = 16
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// newTestBridge builds a simulated bridge that is out of standby.
func newTestBridge(t *testing.T) (*driver.Bridge, *driver.SimBackend) {
	t.Helper()
	sim := driver.NewSimBackend()
	br, err := driver.NewBridge(sim, driver.BridgeConfig{
		Standby: pinStandby,
		A:       driver.ChannelConfig{Name: PumpPeristaltic, PWM: pinPumpPWM, IN1: pinPumpIN1, IN2: pinPumpIN2},
		B: driver.ChannelConfig{
			Name: PumpVacuum, PWM: pinVacPWM, IN1: pinVacIN1, IN2: pinVacIN2,
			BrakeHold: time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	br.Reset()
	return br, sim
}

func newTestPeristaltic(t *testing.T) (*PeristalticService, *driver.SimBackend, *fakeClock, *fakeEventRepo) {
	t.Helper()
	br, sim := newTestBridge(t)
	clk := newFakeClock()
	repo := &fakeEventRepo{}
	s := NewPeristalticService(br.A, repo, nil)
	s.now = clk.Now
	return s, sim, clk, repo
}

type stubInterlock struct{ safe bool }

func (s *stubInterlock) SafeToRun() bool { return s.safe }

func newTestVacuum(t *testing.T, interlock SafetyInterlock) (*VacuumService, *driver.SimBackend, *fakeClock, *fakeEventRepo) {
	t.Helper()
	br, sim := newTestBridge(t)
	clk := newFakeClock()
	repo := &fakeEventRepo{}
	s := NewVacuumService(br.B, repo, interlock, nil)
	s.now = clk.Now
	return s, sim, clk, repo
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
