package controllers

import (
	"log/slog"
	"time"

	"github.com/R3DPanda1/LWN-PHY-Sim/models"
	repo "github.com/R3DPanda1/LWN-PHY-Sim/repositories"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator"
	dev "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device"
	devModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	gw "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway"
	gwModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
	e "github.com/R3DPanda1/LWN-PHY-Sim/socket"
)

// SimulatorController is the interface that defines the methods that the simulator controller must implement.
type SimulatorController interface {
	GetInstance(models.Scenario) error                            // Build the simulator from a scenario
	Run() bool                                                    // Run the simulator
	Stop() bool                                                   // Stop the simulator
	Status() simulator.Status                                     // Get the status of the simulator
	GetGateways() []gw.Gateway                                    // Get the gateways
	AddGateway(gwModels.InfoGateway) (int, error)                 // Add a gateway
	DeleteGateway(int) error                                      // Delete a gateway
	GetDevices() []dev.Device                                     // Get the devices
	AddDevice(devModels.InformationDevice) (int, error)           // Add a device
	DeleteDevice(int) error                                       // Delete a device
	SendUplink(e.NewPayload) (*radio.Transmission, bool, error)  // Send an uplink
	SendDownlink(e.Downlink) (*radio.Transmission, error)         // Send a downlink
	ChangeLocation(e.NewLocation) error                           // Change the location of a device
	StepDevice(e.StepDevice) (bool, error)                        // Walk a device one cell toward a waypoint
	GetWayPoints() []location.Location                            // Get the waypoints
	AddWayPoint(location.Location) int                            // Add a waypoint
	Tick(time.Duration) int                                       // Advance the virtual clock
	Transmissions(int) ([]radio.Transmission, error)              // Frames collected by a gateway
	Reset()                                                       // Rewind the simulation
	AddRun()                                                      // Count a new run

	// Event broker
	GetEventBroker() *events.EventBroker

	// Configuration
	SetPerformance(models.PerformanceConfig) error
	SetEvents(models.EventsConfig)
}

// simulatorController controller struct
type simulatorController struct {
	repo repo.SimulatorRepository
}

// NewSimulatorController create a new controller instance with the provided repository
func NewSimulatorController(repo repo.SimulatorRepository) SimulatorController {
	return &simulatorController{
		repo: repo,
	}
}

// --- Controller calls to Repository, no need to comment them, they are self-explanatory ---
// Check the repository methods to see what they do

func (c *simulatorController) GetInstance(scenario models.Scenario) error {
	return c.repo.GetInstance(scenario)
}

func (c *simulatorController) Run() bool {
	return c.repo.Run()
}

func (c *simulatorController) Stop() bool {
	return c.repo.Stop()
}

func (c *simulatorController) Status() simulator.Status {
	return c.repo.Status()
}

func (c *simulatorController) GetGateways() []gw.Gateway {
	return c.repo.GetGateways()
}

func (c *simulatorController) AddGateway(info gwModels.InfoGateway) (int, error) {
	return c.repo.AddGateway(info)
}

func (c *simulatorController) DeleteGateway(id int) error {
	return c.repo.DeleteGateway(id)
}

func (c *simulatorController) GetDevices() []dev.Device {
	return c.repo.GetDevices()
}

func (c *simulatorController) AddDevice(info devModels.InformationDevice) (int, error) {
	return c.repo.AddDevice(info)
}

func (c *simulatorController) DeleteDevice(id int) error {
	return c.repo.DeleteDevice(id)
}

func (c *simulatorController) SendUplink(pl e.NewPayload) (*radio.Transmission, bool, error) {
	tx, queued, err := c.repo.SendUplink(pl)
	if err != nil {
		slog.Warn("uplink request failed", "component", "controller", "device", pl.Id, "error", err)
	}
	return tx, queued, err
}

func (c *simulatorController) SendDownlink(dl e.Downlink) (*radio.Transmission, error) {
	tx, err := c.repo.SendDownlink(dl)
	if err != nil {
		slog.Warn("downlink request failed", "component", "controller", "gateway", dl.GatewayId, "device", dl.DeviceId, "error", err)
	}
	return tx, err
}

func (c *simulatorController) ChangeLocation(l e.NewLocation) error {
	return c.repo.ChangeLocation(l)
}

func (c *simulatorController) StepDevice(st e.StepDevice) (bool, error) {
	moved, err := c.repo.StepDevice(st)
	if err != nil {
		slog.Warn("step request failed", "component", "controller", "device", st.Id, "waypoint", st.WayPoint, "error", err)
	}
	return moved, err
}

func (c *simulatorController) GetWayPoints() []location.Location {
	return c.repo.GetWayPoints()
}

func (c *simulatorController) AddWayPoint(p location.Location) int {
	return c.repo.AddWayPoint(p)
}

func (c *simulatorController) Tick(d time.Duration) int {
	return c.repo.Tick(d)
}

func (c *simulatorController) Transmissions(id int) ([]radio.Transmission, error) {
	return c.repo.Transmissions(id)
}

func (c *simulatorController) Reset() {
	c.repo.Reset()
}

func (c *simulatorController) AddRun() {
	c.repo.AddRun()
}

func (c *simulatorController) GetEventBroker() *events.EventBroker {
	return c.repo.GetEventBroker()
}

func (c *simulatorController) SetPerformance(p models.PerformanceConfig) error {
	return c.repo.SetPerformance(p)
}

func (c *simulatorController) SetEvents(ev models.EventsConfig) {
	c.repo.SetEvents(ev)
}
