package driver

import (
	"errors"
	"fmt"
)

// Pin is a GPIO number in the backend's numbering scheme (BCM on the Pi).
type Pin uint8

// Backend abstracts the GPIO/PWM peripheral. ConfigurePWM fails when the
// pin cannot carry PWM; writes never fail once the backend is open, so they
// return nothing.
type Backend interface {
	ConfigureOutput(pin Pin)
	ConfigurePWM(pin Pin, frequencyHz int, maxDuty uint32) error
	Write(pin Pin, high bool)
	SetDuty(pin Pin, duty uint32)
	Close() error
}

// Backend kinds accepted by NewBackend.
const (
	BackendSim  = "sim"
	BackendRPIO = "rpio"
)

var errUnknownBackend = errors.New("unknown hardware backend")

// NewBackend opens the named backend.
func NewBackend(kind string) (Backend, error) {
	switch kind {
	case "", BackendSim:
		return NewSimBackend(), nil
	case BackendRPIO:
		return OpenRPIO()
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, kind)
	}
}
