package webserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brocaar/lorawan"

	cnt "github.com/R3DPanda1/LWN-PHY-Sim/controllers"
	"github.com/R3DPanda1/LWN-PHY-Sim/models"
	repo "github.com/R3DPanda1/LWN-PHY-Sim/repositories"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator"
	gwModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
)

func newTestServer(t *testing.T) *WebServer {
	t.Helper()

	controller := cnt.NewSimulatorController(repo.NewSimulatorRepository())
	scenario := models.Scenario{
		Width:   10,
		Height:  10,
		Terrain: "free",
		Seed:    1,
		Radio:   models.RadioConfig{SpreadingFactor: 7, Bandwidth: 125000, MaximumPayloadSize: 51, CodingRate: 1},
		Gateways: []gwModels.InfoGateway{{
			Name:       "gw-1",
			MACAddress: lorawan.EUI64{0xaa, 0, 0, 0, 0, 0, 0, 1},
			Position:   environment.Position{X: 5, Y: 5},
			Active:     true,
		}},
	}
	if err := controller.GetInstance(scenario); err != nil {
		t.Fatalf("GetInstance: %v", err)
	}
	return NewWebServer(&models.ServerConfig{Address: "localhost", Port: 0}, controller)
}

func do(t *testing.T, ws *WebServer, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ws.Router.ServeHTTP(w, req)
	return w
}

func TestStatusStartStop(t *testing.T) {
	ws := newTestServer(t)

	w := do(t, ws, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d", w.Code)
	}
	var st simulator.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Running || st.Gateways != 1 {
		t.Errorf("unexpected status %+v", st)
	}

	if w := do(t, ws, http.MethodGet, "/api/start", nil); w.Body.String() != "true" {
		t.Errorf("start = %s", w.Body.String())
	}
	if w := do(t, ws, http.MethodGet, "/api/start", nil); w.Body.String() != "false" {
		t.Errorf("second start = %s", w.Body.String())
	}
	if w := do(t, ws, http.MethodGet, "/api/stop", nil); w.Body.String() != "true" {
		t.Errorf("stop = %s", w.Body.String())
	}
}

func TestUplinkFlow(t *testing.T) {
	ws := newTestServer(t)

	w := do(t, ws, http.MethodPost, "/api/add-device", map[string]interface{}{
		"name":          "mote-1",
		"devEUI":        "0000000000000001",
		"position":      map[string]int{"x": 0, "y": 0},
		"configuration": map[string]interface{}{"transmissionPower": 14},
		"status":        map[string]bool{"active": true},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add-device: %d %s", w.Code, w.Body.String())
	}

	if w := do(t, ws, http.MethodGet, "/api/start", nil); w.Code != http.StatusOK {
		t.Fatalf("start: %d", w.Code)
	}
	defer do(t, ws, http.MethodGet, "/api/stop", nil)

	w = do(t, ws, http.MethodPost, "/api/send-uplink", map[string]interface{}{"id": 0, "payload": "hello"})
	if w.Code != http.StatusOK {
		t.Fatalf("send-uplink: %d %s", w.Code, w.Body.String())
	}
	var res struct {
		Delivered bool `json:"delivered"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Delivered {
		t.Fatalf("uplink not delivered: %s", w.Body.String())
	}

	w = do(t, ws, http.MethodGet, "/api/gateway/0/transmissions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("transmissions: %d", w.Code)
	}
	var txs []radio.Transmission
	if err := json.Unmarshal(w.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].Power != 14 {
		t.Errorf("unexpected transmissions %+v", txs)
	}
}

func TestTick(t *testing.T) {
	ws := newTestServer(t)

	if w := do(t, ws, http.MethodPost, "/api/tick", map[string]string{"duration": "soon"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad duration code = %d", w.Code)
	}

	w := do(t, ws, http.MethodPost, "/api/tick", map[string]string{"duration": "2s"})
	if w.Code != http.StatusOK {
		t.Fatalf("tick: %d", w.Code)
	}
	var res struct {
		SimTime time.Duration `json:"simTime"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.SimTime != 2*time.Second {
		t.Errorf("simTime = %v, want 2s", res.SimTime)
	}

	do(t, ws, http.MethodPost, "/api/reset", nil)
	w = do(t, ws, http.MethodGet, "/api/status", nil)
	var st simulator.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.SimTime != 0 {
		t.Errorf("simTime after reset = %v", st.SimTime)
	}
}

func TestStepDevice(t *testing.T) {
	ws := newTestServer(t)

	w := do(t, ws, http.MethodPost, "/api/add-device", map[string]interface{}{
		"name":     "walker",
		"devEUI":   "0000000000000002",
		"position": map[string]int{"x": 0, "y": 0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add-device: %d %s", w.Code, w.Body.String())
	}

	if w := do(t, ws, http.MethodPost, "/api/step-device", map[string]int{"id": 0, "wayPoint": 0}); w.Code != http.StatusNotFound {
		t.Errorf("unknown waypoint code = %d", w.Code)
	}

	grid := environment.NewUniform(10, 10, environment.Characteristic{}, location.Location{})
	if w := do(t, ws, http.MethodPost, "/api/add-waypoint", grid.ToLocation(environment.Position{X: 0, Y: 2})); w.Code != http.StatusOK {
		t.Fatalf("add-waypoint: %d", w.Code)
	}
	w = do(t, ws, http.MethodGet, "/api/waypoints", nil)
	var points []location.Location
	if err := json.Unmarshal(w.Body.Bytes(), &points); err != nil {
		t.Fatal(err)
	}
	if len(points) != 1 {
		t.Fatalf("waypoints = %v", points)
	}

	var res struct {
		Moved bool `json:"moved"`
	}
	for i, want := range []bool{true, true, false} {
		w := do(t, ws, http.MethodPost, "/api/step-device", map[string]int{"id": 0, "wayPoint": 0})
		if w.Code != http.StatusOK {
			t.Fatalf("step %d: %d %s", i, w.Code, w.Body.String())
		}
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if res.Moved != want {
			t.Errorf("step %d moved = %v, want %v", i, res.Moved, want)
		}
	}
}

func TestErrors(t *testing.T) {
	ws := newTestServer(t)

	if w := do(t, ws, http.MethodPost, "/api/send-uplink", map[string]interface{}{"id": 7, "payload": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown device code = %d", w.Code)
	}
	if w := do(t, ws, http.MethodGet, "/api/gateway/9/transmissions", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown gateway code = %d", w.Code)
	}
	if w := do(t, ws, http.MethodGet, "/api/gateway/abc/transmissions", nil); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id code = %d", w.Code)
	}
	w := do(t, ws, http.MethodPost, "/api/add-gateway", map[string]interface{}{
		"name":       "far",
		"macAddress": "aa00000000000002",
		"position":   map[string]int{"x": 50, "y": 0},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("out of map gateway code = %d", w.Code)
	}
}
