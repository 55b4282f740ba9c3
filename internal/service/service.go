package service

import (
	"context"
	"time"

	"liquid_handler"
	"liquid_handler/internal/driver"
	"liquid_handler/internal/logger"
	"liquid_handler/internal/models"
	"liquid_handler/internal/repository"
)

// Motor is what a pump controller needs from its H-bridge channel.
type Motor interface {
	Coast()
	Brake()
	DriveForward(duty uint32)
	DriveReverse(duty uint32)
	Disable()
	LastDuty() uint32
	MaxDuty() uint32
}

// Peristaltic controls the bidirectional pump.
type Peristaltic interface {
	Control(ctx context.Context, state PumpState, speed, duration int) error
	Update(ctx context.Context)
	RemainingTime() int
	Halt(ctx context.Context)
	Status() liquid_handler.PumpStatus
}

// Vacuum controls the forward-only, speed-capped pump.
type Vacuum interface {
	Control(ctx context.Context, state VacuumState, percent, duration int) error
	EmergencyStop(ctx context.Context)
	Update(ctx context.Context)
	RemainingTime() int
	Halt(ctx context.Context)
	Status() liquid_handler.PumpStatus
}

// Monitoring exposes a read-only snapshot of both pumps.
type Monitoring interface {
	GetStatus(ctx context.Context) liquid_handler.DeviceStatus
}

// EventLog exposes the pump journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.PumpEvent, error)
}

// Poller is the host loop that expires timed runs.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Peristaltic
	Vacuum
	Monitoring
	EventLog
	Poller
}

// NewService wires the bridge channels and the journal into the controllers.
// Channel A drives the peristaltic pump, channel B the vacuum pump.
func NewService(repos *repository.Repository, bridge *driver.Bridge, log *logger.Logger) *Service {
	pump := NewPeristalticService(bridge.A, repos.EventRepo, log)
	vacuum := NewVacuumService(bridge.B, repos.EventRepo, AlwaysSafe{}, log)
	return &Service{
		Peristaltic: pump,
		Vacuum:      vacuum,
		Monitoring:  NewMonitoringService(pump, vacuum),
		EventLog:    NewEventLogService(repos.EventRepo),
		Poller:      NewPollerService(pump, vacuum),
	}
}
