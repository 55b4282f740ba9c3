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
	DefaultPumpSpeed    = 512
	DefaultPumpDuration = 5
)

// PeristalticService runs the bidirectional pump on one bridge channel.
type PeristalticService struct {
	mu       sync.Mutex
	motor    Motor
	journal  journal
	log      *logger.Logger
	now      func() time.Time
	state    PumpState
	speed    int
	duration int
	timed    bool
	start    time.Time
}

func NewPeristalticService(motor Motor, events repository.EventRepo, log *logger.Logger) *PeristalticService {
	if log == nil {
		log = logger.NewNop()
	}
	return &PeristalticService{
		motor:    motor,
		journal:  journal{repo: events, log: log, pump: PumpPeristaltic},
		log:      log,
		now:      time.Now,
		state:    PumpStopped,
		speed:    DefaultPumpSpeed,
		duration: DefaultPumpDuration,
	}
}

// Control applies a new state. Speed is in duty units and clamped to the
// channel's range; duration 0 runs until the next command.
func (s *PeristalticService) Control(ctx context.Context, state PumpState, speed, duration int) error {
	if state < PumpStopped || state > PumpReverse {
		return fmt.Errorf("%w: %d", ErrInvalidState, state)
	}
	if duration < 0 {
		duration = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(state, speed, duration)

	typ, desc := EventStart, "Pump started "+state.String()
	if state == PumpStopped {
		typ, desc = EventStop, "Pump stopped"
	}
	s.journal.record(ctx, s.now(), typ, desc, map[string]any{
		"speed":    s.speed,
		"duration": s.duration,
		"duty":     s.motor.LastDuty(),
	})
	s.log.Debugw("pump_control", "state", state.String(), "speed", s.speed, "duration", s.duration)
	return nil
}

// apply must be called with mu held.
func (s *PeristalticService) apply(state PumpState, speed, duration int) {
	speed = clampInt(speed, 0, int(s.motor.MaxDuty()))

	switch state {
	case PumpStopped:
		s.motor.Coast()
		s.timed = false
	case PumpForward, PumpReverse:
		if state == PumpForward {
			s.motor.DriveForward(uint32(speed))
		} else {
			s.motor.DriveReverse(uint32(speed))
		}
		s.timed = duration > 0
		if s.timed {
			s.start = s.now()
		}
	}

	s.state = state
	s.speed = speed
	s.duration = duration
}

// Update stops an expired timed run. It is a no-op otherwise.
func (s *PeristalticService) Update(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timed || s.state == PumpStopped {
		return
	}
	now := s.now()
	if elapsedSeconds(s.start, now) < s.duration {
		return
	}

	ran := s.duration
	s.apply(PumpStopped, s.speed, 0)
	s.journal.record(ctx, now, EventAutoStop, "Pump timed run finished", map[string]any{"duration": ran})
	s.log.Infow("pump_auto_stop", "duration", ran)
}

// RemainingTime is the number of seconds left in a timed run, or 0.
func (s *PeristalticService) RemainingTime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining()
}

func (s *PeristalticService) remaining() int {
	if !s.timed || s.state == PumpStopped {
		return 0
	}
	return max(0, s.duration-elapsedSeconds(s.start, s.now()))
}

// Halt brakes the pump and leaves it stopped.
func (s *PeristalticService) Halt(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.motor.Brake()
	s.state = PumpStopped
	s.timed = false
	s.journal.record(ctx, s.now(), EventHalt, "Pump halted", nil)
	s.log.Infow("pump_halt")
}

// Status returns a snapshot of the pump.
func (s *PeristalticService) Status() liquid_handler.PumpStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return liquid_handler.PumpStatus{
		State:         s.state.String(),
		Speed:         s.speed,
		SpeedPercent:  driver.DutyToPercent(uint32(s.speed), s.motor.MaxDuty()),
		RemainingTime: s.remaining(),
		IsTimedRun:    s.timed,
		Duration:      s.duration,
		Duty:          s.motor.LastDuty(),
	}
}

// elapsedSeconds truncates to whole seconds.
func elapsedSeconds(start, now time.Time) int {
	return int(now.Sub(start) / time.Second)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
