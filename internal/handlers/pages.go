package handlers

import (
	"net/http"

	"liquid_handler"

	"github.com/gin-gonic/gin"
)

const notConnected = "Not connected"

type pageData struct {
	Pump        liquid_handler.PumpStatus
	Vacuum      liquid_handler.PumpStatus
	PumpLabel   string
	VacuumLabel string
	Address     string
	Connected   bool
	SpeedMin    int
	SpeedMax    int
	MaxDuration int
}

var pumpStateLabels = map[string]string{
	"stopped": "Stopped",
	"forward": "Forward (Sample Intake)",
	"reverse": "Reverse (Liquid Extraction)",
	"running": "Running (Vacuum Generation)",
}

func stateLabel(state string) string {
	if l, ok := pumpStateLabels[state]; ok {
		return l
	}
	return state
}

func (h *Handler) pageData(c *gin.Context) pageData {
	st := h.services.Monitoring.GetStatus(c.Request.Context())
	d := pageData{
		Pump:        st.Pump,
		Vacuum:      st.Vacuum,
		PumpLabel:   stateLabel(st.Pump.State),
		VacuumLabel: stateLabel(st.Vacuum.State),
		Address:     notConnected,
		SpeedMin:    webPumpSpeedMin,
		SpeedMax:    webPumpSpeedMax,
		MaxDuration: webDurationMaxSec,
	}
	if h.network != nil {
		d.Connected = h.network.IsConnected()
		d.Address = h.network.Address()
	}
	return d
}

// @Summary      Control page
// @Tags         pages
// @Produce      html
// @Success      200
// @Router       / [get]
func (h *Handler) indexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.pageData(c))
}

// @Summary      Diagnostic page
// @Tags         pages
// @Produce      html
// @Success      200
// @Router       /test [get]
func (h *Handler) testPage(c *gin.Context) {
	c.HTML(http.StatusOK, "test.html", h.pageData(c))
}
