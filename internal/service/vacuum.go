package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"liquid_handler"
	"liquid_handler/internal/driver"
	"liquid_handler/internal/logger"
	"liquid_handler/internal/repository"
)

const (
	// VacuumMaxPercent is the hard speed ceiling applied to every run.
	VacuumMaxPercent = 80

	DefaultVacuumSpeed    = 100
	DefaultVacuumDuration = 5
)

// SafetyInterlock decides whether the vacuum pump may start.
type SafetyInterlock interface {
	SafeToRun() bool
}

// AlwaysSafe is the interlock used when no sensors are fitted.
type AlwaysSafe struct{}

func (AlwaysSafe) SafeToRun() bool { return true }

// VacuumService runs the forward-only vacuum pump on one bridge channel.
type VacuumService struct {
	mu        sync.Mutex
	motor     Motor
	interlock SafetyInterlock
	journal   journal
	log       *logger.Logger
	now       func() time.Time
	state     VacuumState
	speed     int // requested percent, before the safety cap
	duration  int
	timed     bool
	start     time.Time
}

func NewVacuumService(motor Motor, events repository.EventRepo, interlock SafetyInterlock, log *logger.Logger) *VacuumService {
	if interlock == nil {
		interlock = AlwaysSafe{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &VacuumService{
		motor:     motor,
		interlock: interlock,
		journal:   journal{repo: events, log: log, pump: PumpVacuum},
		log:       log,
		now:       time.Now,
		state:     VacuumStopped,
		speed:     DefaultVacuumSpeed,
		duration:  DefaultVacuumDuration,
	}
}

// Control applies a new state. percent is clamped to [0,100] and the duty
// actually applied never exceeds VacuumMaxPercent. Starting is refused with
// ErrUnsafe when the interlock says no; the pump is left as it was.
func (s *VacuumService) Control(ctx context.Context, state VacuumState, percent, duration int) error {
	if state != VacuumStopped && state != VacuumRunning {
		return fmt.Errorf("%w: %d", ErrInvalidState, state)
	}
	if duration < 0 {
		duration = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state == VacuumRunning && !s.interlock.SafeToRun() {
		s.journal.record(ctx, s.now(), EventRejected, "Vacuum start blocked by safety interlock", map[string]any{
			"speed":    percent,
			"duration": duration,
		})
		s.log.Warnw("vacuum_interlock_rejected", "speed", percent, "duration", duration)
		return ErrUnsafe
	}

	s.apply(state, percent, duration)

	typ, desc := EventStart, "Vacuum pump started"
	if state == VacuumStopped {
		typ, desc = EventStop, "Vacuum pump stopped"
	}
	s.journal.record(ctx, s.now(), typ, desc, map[string]any{
		"speed":    s.speed,
		"duration": s.duration,
		"duty":     s.motor.LastDuty(),
	})
	s.log.Debugw("vacuum_control", "state", state.String(), "speed", s.speed, "duration", s.duration)
	return nil
}

// apply must be called with mu held.
func (s *VacuumService) apply(state VacuumState, percent, duration int) {
	percent = clampInt(percent, 0, 100)

	switch state {
	case VacuumStopped:
		s.motor.Coast()
		s.timed = false
	case VacuumRunning:
		s.motor.DriveForward(driver.PercentToDuty(min(percent, VacuumMaxPercent), s.motor.MaxDuty()))
		s.timed = duration > 0
		if s.timed {
			s.start = s.now()
		}
	}

	s.state = state
	s.speed = percent
	s.duration = duration
}

// EmergencyStop cuts the duty and drops the driver's standby line at once.
// The next drive command on either channel re-enables the driver.
func (s *VacuumService) EmergencyStop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motor.Disable()
	s.state = VacuumStopped
	s.timed = false

	s.journal.record(ctx, s.now(), EventEmergencyStop, "Vacuum pump emergency stop", nil)
	s.log.Warnw("vacuum_emergency_stop")
}

// Update stops an expired timed run. It is a no-op otherwise.
func (s *VacuumService) Update(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timed || s.state == VacuumStopped {
		return
	}
	now := s.now()
	if elapsedSeconds(s.start, now) < s.duration {
		return
	}

	ran := s.duration
	s.apply(VacuumStopped, s.speed, 0)
	s.journal.record(ctx, now, EventAutoStop, "Vacuum timed run finished", map[string]any{"duration": ran})
	s.log.Infow("vacuum_auto_stop", "duration", ran)
}

// RemainingTime is the number of seconds left in a timed run, or 0.
func (s *VacuumService) RemainingTime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining()
}

func (s *VacuumService) remaining() int {
	if !s.timed || s.state == VacuumStopped {
		return 0
	}
	return max(0, s.duration-elapsedSeconds(s.start, s.now()))
}

// Halt brakes the pump. The channel bounds the full-duty brake and coasts
// afterwards.
func (s *VacuumService) Halt(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motor.Brake()
	s.state = VacuumStopped
	s.timed = false
	s.journal.record(ctx, s.now(), EventHalt, "Vacuum pump halted", nil)
	s.log.Infow("vacuum_halt")
}

// Status returns a snapshot of the pump. Speed is the requested percent;
// SpeedPercent is that percent after the safety cap.
func (s *VacuumService) Status() liquid_handler.PumpStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return liquid_handler.PumpStatus{
		State:         s.state.String(),
		Speed:         s.speed,
		SpeedPercent:  min(s.speed, VacuumMaxPercent),
		RemainingTime: s.remaining(),
		IsTimedRun:    s.timed,
		Duration:      s.duration,
		Duty:          s.motor.LastDuty(),
	}
}
