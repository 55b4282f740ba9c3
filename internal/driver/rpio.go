package driver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// The BCM PWM clock cannot run faster than this.
const rpioMaxPWMClock = 9_600_000

var (
	errNotPWMPin      = errors.New("pin has no hardware PWM")
	errPWMChannelUsed = errors.New("hardware PWM channel already in use")
	errPWMFrequency   = errors.New("PWM frequency out of range")
)

// rpioPWMChannels maps the BCM pins go-rpio can switch to hardware PWM onto
// the peripheral channel they share. Two pins on one channel carry the same
// signal.
var rpioPWMChannels = map[Pin]int{
	12: 0, 18: 0, 40: 0,
	13: 1, 19: 1, 41: 1, 45: 1,
}

// pwmTiming is the hardware setup for one PWM pin. Duties arrive in
// [0, maxDuty] and are rescaled when cycle is shorter than maxDuty+1.
type pwmTiming struct {
	clock   int
	cycle   uint32
	maxDuty uint32
}

// newPWMTiming derives the PWM clock from the requested frequency. When the
// clock would exceed the peripheral limit the cycle is shortened instead, so
// the output frequency holds at the cost of resolution.
func newPWMTiming(frequencyHz int, maxDuty uint32) (pwmTiming, error) {
	if frequencyHz <= 0 || frequencyHz > rpioMaxPWMClock/2 {
		return pwmTiming{}, fmt.Errorf("%w: %d Hz", errPWMFrequency, frequencyHz)
	}
	cycle := maxDuty + 1
	if limit := uint32(rpioMaxPWMClock / frequencyHz); cycle > limit {
		cycle = limit
	}
	return pwmTiming{clock: frequencyHz * int(cycle), cycle: cycle, maxDuty: maxDuty}, nil
}

// outputHz is the frequency the pin actually produces.
func (t pwmTiming) outputHz() int { return t.clock / int(t.cycle) }

func (t pwmTiming) scale(duty uint32) uint32 {
	if duty > t.maxDuty {
		duty = t.maxDuty
	}
	if t.cycle == t.maxDuty+1 {
		return duty
	}
	return uint32(uint64(duty) * uint64(t.cycle) / uint64(t.maxDuty+1))
}

// RPIOBackend drives Raspberry Pi GPIO through /dev/gpiomem.
type RPIOBackend struct {
	mu       sync.Mutex
	timings  map[Pin]pwmTiming
	channels map[int]Pin
}

// OpenRPIO maps the GPIO registers. It fails on machines without them.
func OpenRPIO() (*RPIOBackend, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	return newRPIOBackend(), nil
}

func newRPIOBackend() *RPIOBackend {
	return &RPIOBackend{
		timings:  make(map[Pin]pwmTiming),
		channels: make(map[int]Pin),
	}
}

func (b *RPIOBackend) ConfigureOutput(pin Pin) {
	p := rpio.Pin(pin)
	p.Output()
	p.Low()
}

// ConfigurePWM sets the pin to hardware PWM. Pins without hardware PWM, or
// whose PWM channel is taken by another pin, are rejected.
func (b *RPIOBackend) ConfigurePWM(pin Pin, frequencyHz int, maxDuty uint32) error {
	t, err := b.claimPWM(pin, frequencyHz, maxDuty)
	if err != nil {
		return err
	}

	p := rpio.Pin(pin)
	p.Pwm()
	p.Freq(t.clock)
	p.DutyCycle(0, t.cycle)
	return nil
}

// claimPWM validates the pin and records its timing without touching the
// hardware.
func (b *RPIOBackend) claimPWM(pin Pin, frequencyHz int, maxDuty uint32) (pwmTiming, error) {
	ch, ok := rpioPWMChannels[pin]
	if !ok {
		return pwmTiming{}, fmt.Errorf("%w: BCM %d", errNotPWMPin, pin)
	}
	t, err := newPWMTiming(frequencyHz, maxDuty)
	if err != nil {
		return pwmTiming{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if owner, taken := b.channels[ch]; taken && owner != pin {
		return pwmTiming{}, fmt.Errorf("%w: BCM %d and BCM %d share PWM%d", errPWMChannelUsed, owner, pin, ch)
	}
	b.channels[ch] = pin
	b.timings[pin] = t
	return t, nil
}

func (b *RPIOBackend) Write(pin Pin, high bool) {
	if high {
		rpio.Pin(pin).High()
		return
	}
	rpio.Pin(pin).Low()
}

func (b *RPIOBackend) SetDuty(pin Pin, duty uint32) {
	b.mu.Lock()
	t, ok := b.timings[pin]
	b.mu.Unlock()
	if !ok {
		return
	}
	rpio.Pin(pin).DutyCycle(t.scale(duty), t.cycle)
}

func (b *RPIOBackend) Close() error {
	rpio.StopPwm()
	return rpio.Close()
}
