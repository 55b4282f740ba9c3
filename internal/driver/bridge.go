package driver

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const standbySettle = 10 * time.Millisecond

var errPinConflict = errors.New("pin assigned twice")

// Standby is the enable line shared by both bridge channels.
type Standby struct {
	mu      sync.Mutex
	backend Backend
	pin     Pin
	enabled bool
}

func newStandby(b Backend, pin Pin) *Standby {
	b.ConfigureOutput(pin)
	return &Standby{backend: b, pin: pin}
}

// Enable raises the standby line so both channels can drive.
func (s *Standby) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		return
	}
	s.backend.Write(s.pin, true)
	s.enabled = true
}

// Disable pulls the standby line low, stopping both channels.
func (s *Standby) Disable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.backend.Write(s.pin, false)
	s.enabled = false
}

// Enabled reports whether the standby line is high.
func (s *Standby) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// BridgeConfig wires a dual-channel driver (TB6612FNG style).
type BridgeConfig struct {
	Standby Pin
	A       ChannelConfig
	B       ChannelConfig
}

// Bridge owns the backend, the standby line and both channels.
type Bridge struct {
	backend Backend
	standby *Standby
	A       *Channel
	B       *Channel
}

// NewBridge configures every pin and leaves both channels coasting with the
// driver in standby. Call Reset to bring it out of standby.
func NewBridge(b Backend, cfg BridgeConfig) (*Bridge, error) {
	if err := checkPins(cfg); err != nil {
		return nil, err
	}

	standby := newStandby(b, cfg.Standby)
	a, err := newChannel(b, standby, cfg.A)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", cfg.A.Name, err)
	}
	bc, err := newChannel(b, standby, cfg.B)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", cfg.B.Name, err)
	}

	br := &Bridge{backend: b, standby: standby, A: a, B: bc}
	a.Coast()
	bc.Coast()
	return br, nil
}

// Reset coasts both channels, pulses standby low and re-enables the driver.
func (br *Bridge) Reset() {
	br.standby.Disable()
	br.A.Coast()
	br.B.Coast()
	br.A.sleep(standbySettle)
	br.standby.Enable()
}

// Standby exposes the shared enable line.
func (br *Bridge) Standby() *Standby { return br.standby }

// Close coasts both channels, disables the driver and releases the backend.
func (br *Bridge) Close() error {
	br.A.Coast()
	br.B.Coast()
	br.standby.Disable()
	return br.backend.Close()
}

func checkPins(cfg BridgeConfig) error {
	seen := map[Pin]string{cfg.Standby: "standby"}
	for _, ch := range []ChannelConfig{cfg.A, cfg.B} {
		for _, p := range []Pin{ch.PWM, ch.IN1, ch.IN2} {
			if owner, ok := seen[p]; ok {
				return fmt.Errorf("%w: %d (%s, %s)", errPinConflict, p, owner, ch.Name)
			}
			seen[p] = ch.Name
		}
	}
	return nil
}
