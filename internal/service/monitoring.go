package service

import (
	"context"

	"liquid_handler"
)

// statusSource is satisfied by both pump controllers.
type statusSource interface {
	Status() liquid_handler.PumpStatus
}

type MonitoringService struct {
	pump   statusSource
	vacuum statusSource
}

func NewMonitoringService(pump, vacuum statusSource) *MonitoringService {
	return &MonitoringService{pump: pump, vacuum: vacuum}
}

// GetStatus returns a live snapshot of both pumps. The two snapshots are
// taken one after the other, not atomically.
func (s *MonitoringService) GetStatus(_ context.Context) liquid_handler.DeviceStatus {
	return liquid_handler.DeviceStatus{
		Pump:   s.pump.Status(),
		Vacuum: s.vacuum.Status(),
	}
}
