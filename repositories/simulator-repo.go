package repositories

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/R3DPanda1/LWN-PHY-Sim/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator"
	dev "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device"
	devModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	gw "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway"
	gwModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
	"github.com/R3DPanda1/LWN-PHY-Sim/socket"
)

// SimulatorRepository is the interface that defines the methods that the simulator repository must implement.
type SimulatorRepository interface {
	GetInstance(models.Scenario) error                                 // Build the simulator from a scenario
	Run() bool                                                         // Run the simulator and its clock driver
	Stop() bool                                                        // Stop the simulator and its clock driver
	Status() simulator.Status                                          // Get the status of the simulator
	GetGateways() []gw.Gateway                                         // Get the gateways
	AddGateway(gwModels.InfoGateway) (int, error)                      // Add a gateway
	DeleteGateway(int) error                                           // Delete a gateway
	GetDevices() []dev.Device                                          // Get the devices
	AddDevice(devModels.InformationDevice) (int, error)                // Add a device
	DeleteDevice(int) error                                            // Delete a device
	SendUplink(socket.NewPayload) (*radio.Transmission, bool, error)  // Send an uplink
	SendDownlink(socket.Downlink) (*radio.Transmission, error)         // Send a downlink
	ChangeLocation(socket.NewLocation) error                           // Move a device
	StepDevice(socket.StepDevice) (bool, error)                        // Walk a device one cell toward a waypoint
	GetWayPoints() []location.Location                                 // Get the waypoints
	AddWayPoint(location.Location) int                                 // Add a waypoint
	Tick(time.Duration) int                                            // Advance the virtual clock by hand
	Transmissions(int) ([]radio.Transmission, error)                   // Drain the frames collected by a gateway
	Reset()                                                            // Rewind the simulation
	AddRun()                                                           // Count a new run on the same configuration
	GetEventBroker() *events.EventBroker                               // Get the event broker

	// Configuration
	SetPerformance(models.PerformanceConfig) error
	SetEvents(models.EventsConfig)
}

// simulatorRepository repository struct
type simulatorRepository struct {
	sim *simulator.Simulator

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	resolution time.Duration
	step       time.Duration
	events     models.EventsConfig
}

// NewSimulatorRepository create a new repository instance
func NewSimulatorRepository() SimulatorRepository {
	return &simulatorRepository{
		resolution: 100 * time.Millisecond,
		step:       100 * time.Millisecond,
	}
}

// --- Repository calls to Simulator, no need to comment them, they are self-explanatory ---
// Check the simulator methods to see what they do

func (s *simulatorRepository) GetInstance(scenario models.Scenario) error {
	sim, err := simulator.New(scenario, s.events)
	if err != nil {
		return err
	}
	s.sim = sim
	return nil
}

func (s *simulatorRepository) SetPerformance(p models.PerformanceConfig) error {
	resolution, err := p.Resolution()
	if err != nil {
		return err
	}
	step, err := p.Step()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.resolution, s.step = resolution, step
	s.mu.Unlock()
	return nil
}

func (s *simulatorRepository) SetEvents(e models.EventsConfig) {
	s.events = e
}

// Run If the simulator is stopped, it starts it with its clock driver and returns True, otherwise returns False.
func (s *simulatorRepository) Run() bool {
	if !s.sim.Run() {
		slog.Warn("simulator already running", "component", "simulator")
		return false
	}
	s.startDriver()
	return true
}

// Stop If the simulator is running, it stops it and returns True, otherwise returns False.
func (s *simulatorRepository) Stop() bool {
	s.stopDriver()
	if !s.sim.Stop() {
		slog.Warn("simulator already stopped", "component", "simulator")
		return false
	}
	return true
}

func (s *simulatorRepository) startDriver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func(resolution, step time.Duration) {
		defer close(done)
		if err := s.sim.Drive(ctx, resolution, step); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("clock driver failed", "component", "simulator", "error", err)
		}
	}(s.resolution, s.step)
}

func (s *simulatorRepository) stopDriver() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *simulatorRepository) Status() simulator.Status {
	return s.sim.Status()
}

func (s *simulatorRepository) GetGateways() []gw.Gateway {
	return s.sim.GetGateways()
}

func (s *simulatorRepository) AddGateway(info gwModels.InfoGateway) (int, error) {
	return s.sim.AddGateway(info)
}

func (s *simulatorRepository) DeleteGateway(id int) error {
	return s.sim.DeleteGateway(id)
}

func (s *simulatorRepository) GetDevices() []dev.Device {
	return s.sim.GetDevices()
}

func (s *simulatorRepository) AddDevice(info devModels.InformationDevice) (int, error) {
	return s.sim.AddDevice(info)
}

func (s *simulatorRepository) DeleteDevice(id int) error {
	return s.sim.DeleteDevice(id)
}

func (s *simulatorRepository) SendUplink(pl socket.NewPayload) (*radio.Transmission, bool, error) {
	payload, err := pl.Bytes()
	if err != nil {
		return nil, false, err
	}
	return s.sim.SendUplink(pl.Id, payload)
}

func (s *simulatorRepository) SendDownlink(dl socket.Downlink) (*radio.Transmission, error) {
	payload, err := dl.Bytes()
	if err != nil {
		return nil, err
	}
	return s.sim.SendDownlink(dl.GatewayId, dl.DeviceId, payload)
}

func (s *simulatorRepository) ChangeLocation(l socket.NewLocation) error {
	return s.sim.MoveDevice(l.Id, l.Position)
}

func (s *simulatorRepository) StepDevice(st socket.StepDevice) (bool, error) {
	return s.sim.StepDeviceToWayPoint(st.Id, st.WayPoint)
}

func (s *simulatorRepository) GetWayPoints() []location.Location {
	return s.sim.WayPoints()
}

func (s *simulatorRepository) AddWayPoint(p location.Location) int {
	return s.sim.AddWayPoint(p)
}

func (s *simulatorRepository) Tick(d time.Duration) int {
	return s.sim.Tick(d)
}

func (s *simulatorRepository) Transmissions(id int) ([]radio.Transmission, error) {
	return s.sim.Transmissions(id)
}

func (s *simulatorRepository) Reset() {
	s.stopDriver()
	s.sim.Reset()
}

func (s *simulatorRepository) AddRun() {
	s.sim.AddRun()
}

func (s *simulatorRepository) GetEventBroker() *events.EventBroker {
	return s.sim.GetEventBroker()
}
