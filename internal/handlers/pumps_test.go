package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"liquid_handler"
	"liquid_handler/internal/service"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, liquid_handler.CommandResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)

	var resp liquid_handler.CommandResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func Test_parseControlRequest(t *testing.T) {
	intp := func(v int) *int { return &v }

	cases := []struct {
		name string
		body string
		want ControlRequest
	}{
		{"full", `{"action":"forward","speed":800,"duration":10}`, ControlRequest{Action: "forward", Speed: intp(800), Duration: intp(10)}},
		{"action_only", `{"action":"stop"}`, ControlRequest{Action: "stop"}},
		{"bad_speed_keeps_rest", `{"action":"reverse","speed":"fast","duration":3}`, ControlRequest{Action: "reverse", Duration: intp(3)}},
		{"not_json", `action=forward`, ControlRequest{}},
		{"empty", ``, ControlRequest{}},
		{"array", `[1,2]`, ControlRequest{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseControlRequest([]byte(tc.body))
			if got.Action != tc.want.Action {
				t.Fatalf("action=%q; want %q", got.Action, tc.want.Action)
			}
			if !equalIntPtr(got.Speed, tc.want.Speed) || !equalIntPtr(got.Duration, tc.want.Duration) {
				t.Fatalf("speed/duration = %v/%v; want %v/%v", deref(got.Speed), deref(got.Duration), deref(tc.want.Speed), deref(tc.want.Duration))
			}
		})
	}
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestControlPump_ReverseClampedSpeed(t *testing.T) {
	svc, sim := newLiveServices(t)
	r := newTestRouter(svc)

	w, resp := doRequest(t, r, http.MethodPost, "/api/control", `{"action":"reverse","speed":2000,"duration":10}`)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if resp.Message != "Reverse started for 10 seconds" {
		t.Fatalf("message=%q", resp.Message)
	}

	st := svc.Peristaltic.Status()
	if st.State != "reverse" || st.Speed != 1023 || !st.IsTimedRun || st.Duration != 10 {
		t.Fatalf("unexpected pump status: %+v", st)
	}
	if got := sim.Duty(13); got != 1023 {
		t.Fatalf("pwm duty=%d; want 1023", got)
	}
}

func TestControlPump_UnknownActionLeavesStateAlone(t *testing.T) {
	svc, _ := newLiveServices(t)
	r := newTestRouter(svc)

	if w, _ := doRequest(t, r, http.MethodPost, "/api/control", `{"action":"forward","speed":600,"duration":0}`); w.Code != http.StatusOK {
		t.Fatalf("setup failed: %d", w.Code)
	}
	before := svc.Peristaltic.Status()

	w, resp := doRequest(t, r, http.MethodPost, "/api/control", `{"action":"sideways"}`)
	if w.Code != http.StatusBadRequest || resp.Success || resp.Message != msgInvalidOperation {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	if got := svc.Peristaltic.Status(); got != before {
		t.Fatalf("state changed: %+v -> %+v", before, got)
	}
}

func TestControlPump_WebClampsAndFallbacks(t *testing.T) {
	cases := []struct {
		name         string
		body         string
		wantState    int
		wantSpeed    int
		wantDuration int
		wantMsg      string
	}{
		{"speed_floor", `{"action":"forward","speed":5,"duration":0}`, int(service.PumpForward), 100, 0, "Forward started"},
		{"duration_cap", `{"action":"forward","speed":500,"duration":9999}`, int(service.PumpForward), 500, 300, "Forward started for 300 seconds"},
		{"negative_duration", `{"action":"reverse","speed":500,"duration":-4}`, int(service.PumpReverse), 500, 0, "Reverse started"},
		{"missing_fields_use_current", `{"action":"forward"}`, int(service.PumpForward), 700, 20, "Forward started for 20 seconds"},
		{"stop_is_untimed", `{"action":"stop","duration":30}`, int(service.PumpStopped), 700, 0, "Stopped"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pump := &mockPeristaltic{status: liquid_handler.PumpStatus{Speed: 700, Duration: 20}}
			r := newTestRouter(&service.Service{Peristaltic: pump})

			w, resp := doRequest(t, r, http.MethodPost, "/api/control", tc.body)
			if w.Code != http.StatusOK || resp.Message != tc.wantMsg {
				t.Fatalf("status=%d resp=%+v", w.Code, resp)
			}
			if len(pump.calls) != 1 {
				t.Fatalf("calls=%d; want 1", len(pump.calls))
			}
			got := pump.calls[0]
			want := pumpCall{state: tc.wantState, speed: tc.wantSpeed, duration: tc.wantDuration}
			if got != want {
				t.Fatalf("call=%+v; want %+v", got, want)
			}
		})
	}
}

func TestControlPump_MalformedBody(t *testing.T) {
	pump := &mockPeristaltic{}
	r := newTestRouter(&service.Service{Peristaltic: pump})

	w, resp := doRequest(t, r, http.MethodPost, "/api/control", `{"action":"forward",`)
	if w.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	if len(pump.calls) != 0 {
		t.Fatalf("pump commanded on malformed body")
	}
}

func TestControlPump_ServiceError(t *testing.T) {
	pump := &mockPeristaltic{err: errors.New("boom")}
	r := newTestRouter(&service.Service{Peristaltic: pump})

	w, resp := doRequest(t, r, http.MethodPost, "/api/control", `{"action":"forward"}`)
	if w.Code != http.StatusInternalServerError || resp.Success {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
}

func TestControlEndpoints_MethodNotAllowed(t *testing.T) {
	pump := &mockPeristaltic{}
	vac := &mockVacuum{}
	r := newTestRouter(&service.Service{Peristaltic: pump, Vacuum: vac})

	for _, path := range []string{"/api/control", "/api/vacuum"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w, resp := doRequest(t, r, method, path, `{"action":"stop"}`)
			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("%s %s: status=%d", method, path, w.Code)
			}
			if resp.Success || resp.Message != msgMethodNotAllowed {
				t.Fatalf("%s %s: resp=%+v", method, path, resp)
			}
		}
	}
	if len(pump.calls) != 0 || len(vac.calls) != 0 {
		t.Fatalf("state changed on wrong method")
	}
}

func TestControlVacuum_EmergencyWhileTimedRun(t *testing.T) {
	svc, sim := newLiveServices(t)
	r := newTestRouter(svc)

	if w, _ := doRequest(t, r, http.MethodPost, "/api/vacuum", `{"action":"start","speed":1023,"duration":120}`); w.Code != http.StatusOK {
		t.Fatalf("start failed: %d", w.Code)
	}
	if st := svc.Vacuum.Status(); st.State != "running" || !st.IsTimedRun {
		t.Fatalf("vacuum not running: %+v", st)
	}

	w, resp := doRequest(t, r, http.MethodPost, "/api/vacuum", `{"action":"emergency"}`)
	if w.Code != http.StatusOK || !resp.Success || resp.Message != "Emergency stop activated" {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}

	st := svc.Vacuum.Status()
	if st.State != "stopped" || st.IsTimedRun || st.Duty != 0 || st.RemainingTime != 0 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if sim.Duty(18) != 0 {
		t.Fatalf("pwm duty=%d", sim.Duty(18))
	}
}

func TestControlVacuum_SpeedConversion(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		percent int
	}{
		{"full_slider", `{"action":"start","speed":1023}`, 100},
		{"half_slider", `{"action":"start","speed":512}`, 50},
		{"floor_at_ten", `{"action":"start","speed":20}`, 10},
		{"negative", `{"action":"start","speed":-100}`, 10},
		{"over_range", `{"action":"start","speed":5000}`, 100},
		{"missing_uses_current", `{"action":"start"}`, 35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vac := &mockVacuum{status: liquid_handler.PumpStatus{Speed: 35, Duration: 7}}
			r := newTestRouter(&service.Service{Vacuum: vac})

			w, resp := doRequest(t, r, http.MethodPost, "/api/vacuum", tc.body)
			if w.Code != http.StatusOK || resp.Message != "Vacuum pump started for 7 seconds" {
				t.Fatalf("status=%d resp=%+v", w.Code, resp)
			}
			if got := vac.calls[0].speed; got != tc.percent {
				t.Fatalf("percent=%d; want %d", got, tc.percent)
			}
		})
	}
}

func TestControlVacuum_CappedAtCeiling(t *testing.T) {
	svc, _ := newLiveServices(t)
	r := newTestRouter(svc)

	w, resp := doRequest(t, r, http.MethodPost, "/api/vacuum", `{"action":"start","speed":1023,"duration":0}`)
	if w.Code != http.StatusOK || resp.Message != "Vacuum pump started" {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	st := svc.Vacuum.Status()
	if st.SpeedPercent != service.VacuumMaxPercent || st.IsTimedRun {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestControlVacuum_InterlockConflict(t *testing.T) {
	vac := &mockVacuum{err: service.ErrUnsafe}
	r := newTestRouter(&service.Service{Vacuum: vac})

	w, resp := doRequest(t, r, http.MethodPost, "/api/vacuum", `{"action":"start","speed":600}`)
	if w.Code != http.StatusConflict || resp.Success || resp.Message != msgVacuumUnsafe {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
}

func TestControlVacuum_InvalidOperation(t *testing.T) {
	vac := &mockVacuum{}
	r := newTestRouter(&service.Service{Vacuum: vac})

	w, resp := doRequest(t, r, http.MethodPost, "/api/vacuum", `{"action":"forward"}`)
	if w.Code != http.StatusBadRequest || resp.Message != msgInvalidVacuumOp {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	if len(vac.calls) != 0 || vac.emergency != 0 {
		t.Fatalf("vacuum commanded on invalid action")
	}
}

func TestControlVacuum_Stop(t *testing.T) {
	vac := &mockVacuum{status: liquid_handler.PumpStatus{Speed: 50, Duration: 9}}
	r := newTestRouter(&service.Service{Vacuum: vac})

	w, resp := doRequest(t, r, http.MethodPost, "/api/vacuum", `{"action":"stop"}`)
	if w.Code != http.StatusOK || resp.Message != "Vacuum pump stopped" {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	want := pumpCall{state: int(service.VacuumStopped), speed: 50, duration: 0}
	if vac.calls[0] != want {
		t.Fatalf("call=%+v; want %+v", vac.calls[0], want)
	}
}

func TestGetStatus(t *testing.T) {
	svc, _ := newLiveServices(t)
	r := newTestRouter(svc)

	doRequest(t, r, http.MethodPost, "/api/control", `{"action":"forward","speed":512,"duration":30}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["success"] != true {
		t.Fatalf("success=%v", out["success"])
	}
	pump, _ := out["pump"].(map[string]any)
	for _, key := range []string{"state", "speed", "speedPercent", "remainingTime", "isTimedRun"} {
		if _, ok := pump[key]; !ok {
			t.Fatalf("pump status missing %q: %v", key, pump)
		}
	}
	if pump["state"] != "forward" || pump["speedPercent"] != float64(50) || pump["isTimedRun"] != true {
		t.Fatalf("unexpected pump status: %v", pump)
	}
	vac, _ := out["vacuum"].(map[string]any)
	if vac["state"] != "stopped" || vac["isTimedRun"] != false {
		t.Fatalf("unexpected vacuum status: %v", vac)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
