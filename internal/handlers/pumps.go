package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"liquid_handler"
	"liquid_handler/internal/driver"
	"liquid_handler/internal/service"

	"github.com/gin-gonic/gin"
)

// Response messages shared by the control endpoints.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidOperation = "Invalid operation"
	msgInvalidVacuumOp  = "Invalid vacuum pump operation"
	msgVacuumUnsafe     = "Vacuum pump blocked by safety interlock"
	msgControlFailed    = "Pump command failed"
)

// Limits applied to values coming from the control page.
const (
	webPumpSpeedMin   = 100
	webPumpSpeedMax   = 1023
	webSliderMax      = 1023
	webVacuumMinPct   = 10
	webDurationMaxSec = 300
)

// ControlRequest is the body of both control endpoints. Speed and duration
// are optional; a missing value keeps the pump's current setting.
type ControlRequest struct {
	// Peristaltic: forward, reverse, stop. Vacuum: start, stop, emergency.
	Action string `json:"action" example:"forward"`
	// Peristaltic: duty 100..1023. Vacuum: slider units 0..1023, converted to percent.
	Speed *int `json:"speed,omitempty" example:"800"`
	// Seconds, 0..300. 0 runs until stopped.
	Duration *int `json:"duration,omitempty" example:"10"`
}

// parseControlRequest decodes each field on its own so that one bad field
// does not discard the others. A body that is not a JSON object yields an
// empty request.
func parseControlRequest(body []byte) ControlRequest {
	var (
		raw map[string]json.RawMessage
		req ControlRequest
	)
	if err := json.Unmarshal(body, &raw); err != nil {
		return req
	}
	if v, ok := raw["action"]; ok {
		_ = json.Unmarshal(v, &req.Action)
	}
	req.Speed = optionalInt(raw, "speed")
	req.Duration = optionalInt(raw, "duration")
	return req
}

func optionalInt(raw map[string]json.RawMessage, key string) *int {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return nil
	}
	return &n
}

func (h *Handler) readControlRequest(c *gin.Context) ControlRequest {
	body, err := c.GetRawData()
	if err != nil {
		if h.log != nil {
			h.log.Warnw("control_body_read_failed", "err", err)
		}
		return ControlRequest{}
	}
	return parseControlRequest(body)
}

// webDuration picks the requested duration or falls back to current, and
// clamps it to what the control page allows.
func webDuration(req *int, current int) int {
	d := current
	if req != nil {
		d = *req
	}
	return clamp(d, 0, webDurationMaxSec)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func startedMessage(prefix string, duration int) string {
	if duration > 0 {
		return fmt.Sprintf("%s for %d seconds", prefix, duration)
	}
	return prefix
}

func (h *Handler) respondCommand(c *gin.Context, code int, ok bool, msg string) {
	c.JSON(code, liquid_handler.CommandResponse{Success: ok, Message: msg})
}

func (h *Handler) logAndCommandError(c *gin.Context, code int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	h.respondCommand(c, code, false, userMsg)
}

// @Summary      Control peristaltic pump
// @Description  action is forward, reverse or stop. Speed is clamped to 100..1023 and duration to 0..300 s; a missing field keeps the current value.
// @Tags         pumps
// @Accept       json
// @Produce      json
// @Param        body  body      ControlRequest  true  "Command"
// @Success      200   {object}  liquid_handler.CommandResponse
// @Failure      400   {object}  liquid_handler.CommandResponse
// @Failure      405   {object}  liquid_handler.CommandResponse
// @Router       /api/control [post]
func (h *Handler) controlPump(c *gin.Context) {
	req := h.readControlRequest(c)

	var (
		state  service.PumpState
		prefix string
	)
	switch req.Action {
	case "forward":
		state, prefix = service.PumpForward, "Forward started"
	case "reverse":
		state, prefix = service.PumpReverse, "Reverse started"
	case "stop":
		state = service.PumpStopped
	default:
		h.respondCommand(c, http.StatusBadRequest, false, msgInvalidOperation)
		return
	}

	cur := h.services.Peristaltic.Status()
	speed := cur.Speed
	if req.Speed != nil {
		speed = *req.Speed
	}
	speed = clamp(speed, webPumpSpeedMin, webPumpSpeedMax)

	duration := 0
	if state != service.PumpStopped {
		duration = webDuration(req.Duration, cur.Duration)
	}

	ctx := c.Request.Context()
	if err := h.services.Peristaltic.Control(ctx, state, speed, duration); err != nil {
		h.logAndCommandError(c, http.StatusInternalServerError, msgControlFailed, "pump_control_failed", err, "action", req.Action)
		return
	}

	msg := "Stopped"
	if state != service.PumpStopped {
		msg = startedMessage(prefix, duration)
	}
	h.respondCommand(c, http.StatusOK, true, msg)
}

// @Summary      Control vacuum pump
// @Description  action is start, stop or emergency. Speed is in slider units (0..1023) and converted to a percent of at least 10; the pump never runs above 80%.
// @Tags         pumps
// @Accept       json
// @Produce      json
// @Param        body  body      ControlRequest  true  "Command"
// @Success      200   {object}  liquid_handler.CommandResponse
// @Failure      400   {object}  liquid_handler.CommandResponse
// @Failure      405   {object}  liquid_handler.CommandResponse
// @Failure      409   {object}  liquid_handler.CommandResponse
// @Router       /api/vacuum [post]
func (h *Handler) controlVacuum(c *gin.Context) {
	req := h.readControlRequest(c)
	ctx := c.Request.Context()

	var state service.VacuumState
	switch req.Action {
	case "start":
		state = service.VacuumRunning
	case "stop":
		state = service.VacuumStopped
	case "emergency":
		h.services.Vacuum.EmergencyStop(ctx)
		h.respondCommand(c, http.StatusOK, true, "Emergency stop activated")
		return
	default:
		h.respondCommand(c, http.StatusBadRequest, false, msgInvalidVacuumOp)
		return
	}

	cur := h.services.Vacuum.Status()
	percent := cur.Speed
	if req.Speed != nil {
		percent = max(driver.DutyToPercent(uint32(max(*req.Speed, 0)), webSliderMax), webVacuumMinPct)
	}

	duration := 0
	if state == service.VacuumRunning {
		duration = webDuration(req.Duration, cur.Duration)
	}

	err := h.services.Vacuum.Control(ctx, state, percent, duration)
	switch {
	case errors.Is(err, service.ErrUnsafe):
		h.respondCommand(c, http.StatusConflict, false, msgVacuumUnsafe)
		return
	case err != nil:
		h.logAndCommandError(c, http.StatusInternalServerError, msgControlFailed, "vacuum_control_failed", err, "action", req.Action)
		return
	}

	msg := "Vacuum pump stopped"
	if state == service.VacuumRunning {
		msg = startedMessage("Vacuum pump started", duration)
	}
	h.respondCommand(c, http.StatusOK, true, msg)
}

// @Summary      Pump status
// @Tags         pumps
// @Produce      json
// @Success      200  {object}  liquid_handler.StatusResponse
// @Router       /api/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	st := h.services.Monitoring.GetStatus(c.Request.Context())
	c.JSON(http.StatusOK, liquid_handler.StatusResponse{
		Success: true,
		Pump:    st.Pump,
		Vacuum:  st.Vacuum,
	})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
