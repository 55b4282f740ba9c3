package driver

import (
	"errors"
	"time"
)

const (
	defaultFrequencyHz    = 20000
	defaultResolutionBits = 10
	maxResolutionBits     = 16
)

var errInvalidResolution = errors.New("invalid PWM resolution")

// ChannelConfig describes one H-bridge channel.
type ChannelConfig struct {
	Name           string
	PWM            Pin
	IN1            Pin
	IN2            Pin
	FrequencyHz    int
	ResolutionBits uint
	// BrakeHold > 0 brakes at full duty for this long and then coasts.
	// Zero brakes with the output de-energised and holds it there.
	BrakeHold time.Duration
}

// Channel drives one motor through an H-bridge channel. It is not safe for
// concurrent use; its owner serialises access.
type Channel struct {
	cfg      ChannelConfig
	backend  Backend
	standby  *Standby
	maxDuty  uint32
	lastDuty uint32
	sleep    func(time.Duration)
}

func newChannel(b Backend, standby *Standby, cfg ChannelConfig) (*Channel, error) {
	if cfg.ResolutionBits == 0 {
		cfg.ResolutionBits = defaultResolutionBits
	}
	if cfg.ResolutionBits > maxResolutionBits {
		return nil, errInvalidResolution
	}
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = defaultFrequencyHz
	}

	c := &Channel{
		cfg:     cfg,
		backend: b,
		standby: standby,
		maxDuty: uint32(1)<<cfg.ResolutionBits - 1,
		sleep:   time.Sleep,
	}
	b.ConfigureOutput(cfg.IN1)
	b.ConfigureOutput(cfg.IN2)
	if err := b.ConfigurePWM(cfg.PWM, cfg.FrequencyHz, c.maxDuty); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the configured channel name.
func (c *Channel) Name() string { return c.cfg.Name }

// MaxDuty is 2^resolution - 1.
func (c *Channel) MaxDuty() uint32 { return c.maxDuty }

// LastDuty is the last duty written to the PWM pin.
func (c *Channel) LastDuty() uint32 { return c.lastDuty }

// Coast de-energises the output and lets the motor freewheel.
func (c *Channel) Coast() {
	c.writeDuty(0)
	c.setDirection(false, false)
}

// Brake shorts the motor terminals.
func (c *Channel) Brake() {
	c.writeDuty(0)
	c.setDirection(true, true)
	if c.cfg.BrakeHold <= 0 {
		return
	}

	// full-duty brake draws high current, so it is bounded here
	c.standby.Enable()
	c.writeDuty(c.maxDuty)
	c.sleep(c.cfg.BrakeHold)
	c.Coast()
}

// DriveForward runs the motor forward at duty (clamped to MaxDuty).
func (c *Channel) DriveForward(duty uint32) {
	c.standby.Enable()
	c.setDirection(true, false)
	c.writeDuty(duty)
}

// DriveReverse runs the motor in reverse at duty (clamped to MaxDuty).
func (c *Channel) DriveReverse(duty uint32) {
	c.standby.Enable()
	c.setDirection(false, true)
	c.writeDuty(duty)
}

// Disable zeroes the duty and drops the shared standby line without touching
// the direction pins. Any later drive call re-enables the bridge.
func (c *Channel) Disable() {
	c.writeDuty(0)
	c.standby.Disable()
}

func (c *Channel) writeDuty(duty uint32) {
	if duty > c.maxDuty {
		duty = c.maxDuty
	}
	c.backend.SetDuty(c.cfg.PWM, duty)
	c.lastDuty = duty
}

// setDirection lowers pins before raising any, so a direction change only
// ever passes through coast (low, low) and never through an unintended brake.
func (c *Channel) setDirection(in1, in2 bool) {
	if !in1 {
		c.backend.Write(c.cfg.IN1, false)
	}
	if !in2 {
		c.backend.Write(c.cfg.IN2, false)
	}
	if in1 {
		c.backend.Write(c.cfg.IN1, true)
	}
	if in2 {
		c.backend.Write(c.cfg.IN2, true)
	}
}
