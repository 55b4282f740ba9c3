package liquid_handler

// PumpStatus is the reported snapshot of a single pump.
type PumpStatus struct {
	State         string `json:"state"`         // stopped | forward | reverse | running
	Speed         int    `json:"speed"`         // duty units (peristaltic) or percent (vacuum)
	SpeedPercent  int    `json:"speedPercent"`  // effective percent of full scale
	RemainingTime int    `json:"remainingTime"` // seconds, 0 unless a timed run is active
	IsTimedRun    bool   `json:"isTimedRun"`
	Duration      int    `json:"duration"` // last commanded run duration, seconds
	Duty          uint32 `json:"duty"`     // last PWM duty written to the driver
}

// DeviceStatus groups both pumps.
type DeviceStatus struct {
	Pump   PumpStatus `json:"pump"`
	Vacuum PumpStatus `json:"vacuum"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Success bool       `json:"success"`
	Pump    PumpStatus `json:"pump"`
	Vacuum  PumpStatus `json:"vacuum"`
}

// CommandResponse is the body returned by the control endpoints.
type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
