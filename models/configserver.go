package models

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/logging"
)

// EventsConfig holds history retention settings for the event broker.
type EventsConfig struct {
	HistoryPerDevice  int `json:"historyPerDevice"`
	HistoryPerGateway int `json:"historyPerGateway"`
}

// PerformanceConfig holds tuning parameters for the real-time driver of the virtual clock.
type PerformanceConfig struct {
	SchedulerResolution string `json:"schedulerResolution"` // wall-clock period between ticks
	SimulatedStep       string `json:"simulatedStep"`       // simulated time advanced per tick
}

// Resolution parses SchedulerResolution, defaulting to 100ms.
func (p PerformanceConfig) Resolution() (time.Duration, error) {
	return parseDuration(p.SchedulerResolution, 100*time.Millisecond)
}

// Step parses SimulatedStep, defaulting to the resolution (real time).
func (p PerformanceConfig) Step() (time.Duration, error) {
	resolution, err := p.Resolution()
	if err != nil {
		return 0, err
	}
	return parseDuration(p.SimulatedStep, resolution)
}

func parseDuration(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", v)
	}
	return d, nil
}

// ServerConfig holds the configuration for the server including address, ports, and other settings.
type ServerConfig struct {
	Address     string            `json:"address"`     // Address to bind to (e.g., "localhost")
	Port        int               `json:"port"`        // Port to bind to (default is 8000)
	MetricsPort int               `json:"metricsPort"` // Port to bind to for metrics (default is 8081)
	AutoStart   bool              `json:"autoStart"`   // Flag to automatically start the simulation when the server starts
	Verbose     bool              `json:"verbose"`     // Flag to enable verbose logging
	Logging     logging.Config    `json:"logging"`
	Performance PerformanceConfig `json:"performance"`
	Events      EventsConfig      `json:"events"`
	Scenario    *Scenario         `json:"scenario"` // nil loads DefaultScenario
}

// GetConfigFile loads the configuration from the specified file path, parses it as JSON,
// and returns a ServerConfig instance. It returns an error if the file cannot be read or parsed.
func GetConfigFile(path string) (*ServerConfig, error) {
	config := &ServerConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	if config.Scenario == nil {
		def := DefaultScenario()
		config.Scenario = &def
	}
	return config, nil
}
