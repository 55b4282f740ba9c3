package handlers

import (
	"context"
	"testing"

	"liquid_handler"
	"liquid_handler/internal/driver"
	"liquid_handler/internal/models"
	"liquid_handler/internal/repository"
	"liquid_handler/internal/repository/db"
	"liquid_handler/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type pumpCall struct {
	state    int
	speed    int
	duration int
}

type mockPeristaltic struct {
	status liquid_handler.PumpStatus
	err    error
	calls  []pumpCall
}

func (m *mockPeristaltic) Control(_ context.Context, st service.PumpState, speed, duration int) error {
	m.calls = append(m.calls, pumpCall{state: int(st), speed: speed, duration: duration})
	return m.err
}
func (m *mockPeristaltic) Update(context.Context)            {}
func (m *mockPeristaltic) RemainingTime() int                { return m.status.RemainingTime }
func (m *mockPeristaltic) Halt(context.Context)              {}
func (m *mockPeristaltic) Status() liquid_handler.PumpStatus { return m.status }

type mockVacuum struct {
	status    liquid_handler.PumpStatus
	err       error
	calls     []pumpCall
	emergency int
}

func (m *mockVacuum) Control(_ context.Context, st service.VacuumState, percent, duration int) error {
	m.calls = append(m.calls, pumpCall{state: int(st), speed: percent, duration: duration})
	return m.err
}
func (m *mockVacuum) EmergencyStop(context.Context)     { m.emergency++ }
func (m *mockVacuum) Update(context.Context)            {}
func (m *mockVacuum) RemainingTime() int                { return m.status.RemainingTime }
func (m *mockVacuum) Halt(context.Context)              {}
func (m *mockVacuum) Status() liquid_handler.PumpStatus { return m.status }

type mockMonitoring struct {
	status liquid_handler.DeviceStatus
}

func (m *mockMonitoring) GetStatus(context.Context) liquid_handler.DeviceStatus {
	return m.status
}

type mockEventLog struct {
	resp []models.PumpEvent
	err  error
	last service.LogFilter
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.PumpEvent, error) {
	m.last = f
	return m.resp, m.err
}

type stubNetwork struct {
	connected bool
	addr      string
}

func (s stubNetwork) IsConnected() bool { return s.connected }
func (s stubNetwork) Address() string   { return s.addr }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts...)
	return h.InitRoutes()
}

// newLiveServices wires real controllers to a simulated bridge and an
// in-memory journal.
func newLiveServices(t *testing.T) (*service.Service, *driver.SimBackend) {
	t.Helper()
	sim := driver.NewSimBackend()
	br, err := driver.NewBridge(sim, driver.BridgeConfig{
		Standby: 10,
		A:       driver.ChannelConfig{Name: "peristaltic", PWM: 13, IN1: 11, IN2: 12},
		B:       driver.ChannelConfig{Name: "vacuum", PWM: 18, IN1: 15, IN2: 16},
	})
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	br.Reset()

	conn, err := db.InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return service.NewService(repository.NewRepository(conn), br, nil), sim
}
