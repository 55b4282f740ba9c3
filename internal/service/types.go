package service

import (
	"errors"
	"time"
)

// PumpState is the peristaltic pump's direction.
type PumpState int

const (
	PumpStopped PumpState = iota
	PumpForward
	PumpReverse
)

func (s PumpState) String() string {
	switch s {
	case PumpStopped:
		return "stopped"
	case PumpForward:
		return "forward"
	case PumpReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// VacuumState is the vacuum pump's state. It only runs forward.
type VacuumState int

const (
	VacuumStopped VacuumState = iota
	VacuumRunning
)

func (s VacuumState) String() string {
	switch s {
	case VacuumStopped:
		return "stopped"
	case VacuumRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Journal names for the two pumps.
const (
	PumpPeristaltic = "peristaltic"
	PumpVacuum      = "vacuum"
)

// Journal event types.
const (
	EventStart         = "START"
	EventStop          = "STOP"
	EventAutoStop      = "AUTO_STOP"
	EventEmergencyStop = "EMERGENCY_STOP"
	EventHalt          = "HALT"
	EventRejected      = "REJECTED"
)

var (
	// ErrInvalidState is returned for a state outside the pump's enum.
	ErrInvalidState = errors.New("invalid pump state")
	// ErrUnsafe is returned when the vacuum interlock refuses to start.
	ErrUnsafe = errors.New("vacuum pump blocked by safety interlock")
)

// LogFilter supports history filtering by time range, pump and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Pump string    // "", "peristaltic", "vacuum"
	Type string    // "", "START", "STOP", "AUTO_STOP", "EMERGENCY_STOP", "HALT", "REJECTED"
}
