package driver

import (
	"testing"
	"time"
)

var testBridgeConfig = BridgeConfig{
	Standby: 10,
	A:       ChannelConfig{Name: "peristaltic", PWM: 13, IN1: 11, IN2: 12},
	B:       ChannelConfig{Name: "vacuum", PWM: 18, IN1: 15, IN2: 16, BrakeHold: 50 * time.Millisecond},
}

func newTestBridge(t *testing.T) (*Bridge, *SimBackend, *[]time.Duration) {
	t.Helper()
	sim := NewSimBackend()
	br, err := NewBridge(sim, testBridgeConfig)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	slept := &[]time.Duration{}
	fake := func(d time.Duration) { *slept = append(*slept, d) }
	br.A.sleep = fake
	br.B.sleep = fake
	br.Reset()
	sim.ResetWrites()
	return br, sim, slept
}
