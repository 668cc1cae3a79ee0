package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
)

func TestGetConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"address": "0.0.0.0",
		"port": 8000,
		"metricsPort": 8081,
		"autoStart": true,
		"logging": {"level": "debug", "json": true},
		"performance": {"schedulerResolution": "50ms", "simulatedStep": "1s"},
		"scenario": {
			"width": 20, "height": 10, "terrain": "forest",
			"zones": [{"x0": 0, "y0": 0, "x1": 1, "y1": 1, "terrain": "city"}],
			"radio": {"spreadingFactor": 9, "bandwidth": 125000, "maximumPayloadSize": 115, "codingRate": 1},
			"devices": [{"name": "m1", "devEUI": "0000000000000001", "position": {"x": 3, "y": 4}}]
		}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := GetConfigFile(path)
	if err != nil {
		t.Fatalf("GetConfigFile: %v", err)
	}
	if cfg.Port != 8000 || !cfg.AutoStart || cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Errorf("unexpected server config %+v", cfg)
	}

	resolution, err := cfg.Performance.Resolution()
	if err != nil || resolution != 50*time.Millisecond {
		t.Errorf("resolution = %v, %v", resolution, err)
	}
	step, err := cfg.Performance.Step()
	if err != nil || step != time.Second {
		t.Errorf("step = %v, %v", step, err)
	}

	sc := cfg.Scenario
	if sc.Width != 20 || sc.Radio.SpreadingFactor != 9 || len(sc.Devices) != 1 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Devices[0].Position != (environment.Position{X: 3, Y: 4}) {
		t.Errorf("device position = %+v", sc.Devices[0].Position)
	}

	cells, err := sc.Cells()
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) != 20 || len(cells[0]) != 10 {
		t.Fatalf("cells are %dx%d, want 20x10", len(cells), len(cells[0]))
	}
	if cells[1][1] != environment.City || cells[2][2] != environment.Forest {
		t.Errorf("zone not applied: %+v %+v", cells[1][1], cells[2][2])
	}
}

func TestGetConfigFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"port": 9000}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := GetConfigFile(path)
	if err != nil {
		t.Fatalf("GetConfigFile: %v", err)
	}
	if cfg.Scenario == nil || cfg.Scenario.Radio.Band != "EU868" {
		t.Fatalf("default scenario not loaded: %+v", cfg.Scenario)
	}
	resolution, _ := cfg.Performance.Resolution()
	step, _ := cfg.Performance.Step()
	if resolution != 100*time.Millisecond || step != resolution {
		t.Errorf("resolution = %v, step = %v", resolution, step)
	}
}

func TestGetConfigFileErrors(t *testing.T) {
	if _, err := GetConfigFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := GetConfigFile(path); err == nil {
		t.Error("malformed file should fail")
	}
}

func TestInvalidDurations(t *testing.T) {
	p := PerformanceConfig{SchedulerResolution: "-1s"}
	if _, err := p.Resolution(); err == nil {
		t.Error("negative resolution should fail")
	}
	p = PerformanceConfig{SimulatedStep: "soon"}
	if _, err := p.Step(); err == nil {
		t.Error("malformed step should fail")
	}
}

func TestUnknownTerrain(t *testing.T) {
	sc := Scenario{Width: 2, Height: 2, Terrain: "swamp"}
	if _, err := sc.Cells(); err == nil {
		t.Error("unknown terrain should fail")
	}
	sc = Scenario{Width: 2, Height: 2, Zones: []Zone{{Terrain: "swamp"}}}
	if _, err := sc.Cells(); err == nil {
		t.Error("unknown zone terrain should fail")
	}
}

func TestNegativeMapSize(t *testing.T) {
	sc := DefaultScenario()
	sc.Width = -1
	if _, err := sc.Cells(); err == nil {
		t.Error("negative width should fail")
	}
	sc = DefaultScenario()
	sc.Height = -3
	if _, err := sc.Cells(); err == nil {
		t.Error("negative height should fail")
	}
}
