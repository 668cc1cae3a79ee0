package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/shared"
	dev "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device"
	devModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	gw "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway"
	gwModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/util"
)

// New builds a stopped simulator from scenario.
func New(scenario models.Scenario, eventsCfg models.EventsConfig) (*Simulator, error) {
	shared.DebugPrint("Init new Simulator instance")

	cells, err := scenario.Cells()
	if err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}
	param, err := regionalParameter(scenario.Radio)
	if err != nil {
		return nil, fmt.Errorf("invalid radio configuration: %w", err)
	}

	seed := scenario.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulator{
		Environment: environment.New(cells, scenario.Origin, append([]location.Location(nil), scenario.WayPoints...)),
		Events:      eventsCfg,
		param:       param,
		opts:        engineOptions(scenario.Radio),
		rng:         rand.New(rand.NewSource(seed)),
	}
	s.setup()

	for _, info := range scenario.Gateways {
		if _, err := s.addGateway(info); err != nil {
			return nil, fmt.Errorf("gateway %q: %w", info.Name, err)
		}
	}
	for _, info := range scenario.Devices {
		if _, err := s.addDevice(info); err != nil {
			return nil, fmt.Errorf("device %q: %w", info.Name, err)
		}
	}

	slog.Info("simulator setup complete", "component", "simulator",
		"width", s.Environment.MaxX()+1, "height", s.Environment.MaxY()+1,
		"channel", param.String(), "devices", len(s.Devices), "gateways", len(s.Gateways))
	s.publish(events.SysEventSetup, "Simulator setup complete", false)
	return s, nil
}

// Run turns on the active components. It returns false if the simulation is already running.
func (s *Simulator) Run() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State == util.Running {
		return false
	}
	shared.DebugPrint("Executing Run")
	s.State = util.Running

	for _, g := range s.Gateways {
		if g.Info.Active {
			s.turnONGateway(g)
		}
	}
	for _, d := range s.Devices {
		if d.Info.Status.Active {
			s.turnONDevice(d)
		}
	}

	s.updateMetrics()
	s.publish(events.SysEventStarted, "Simulation started", false)
	return true
}

// Stop turns off every component. It returns false if the simulation is not running.
func (s *Simulator) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State == util.Stopped {
		return false
	}
	shared.DebugPrint("Executing Stop")
	s.stop()
	s.publish(events.SysEventStopped, "Simulation stopped", false)
	return true
}

func (s *Simulator) stop() {
	s.State = util.Stopped
	for _, d := range s.Devices {
		d.Stop()
	}
	for _, g := range s.Gateways {
		if g.IsOn() {
			g.TurnOFF()
		}
	}
	s.updateMetrics()
}

func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Running:  s.State == util.Running,
		SimTime:  s.Environment.Clock.Now(),
		Pending:  s.Environment.Clock.Pending(),
		Runs:     s.Environment.Runs(),
		Devices:  len(s.Devices),
		Gateways: len(s.Gateways),
		Channel:  s.param.String(),

		Center:    s.Environment.MapCenter(),
		WayPoints: len(s.Environment.WayPoints()),
	}
}

// AddDevice registers a mote; it starts at once when the simulation is running and the mote is active.
func (s *Simulator) AddDevice(info devModels.InformationDevice) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addDevice(info)
}

func (s *Simulator) addDevice(info devModels.InformationDevice) (int, error) {
	if !s.Environment.IsValid(info.Position) {
		return -1, fmt.Errorf("%w: %+v", ErrOutOfMap, info.Position)
	}
	if err := s.searchName(info.Name); err != nil {
		return -1, err
	}
	if err := s.searchAddress(info.DevEUI); err != nil {
		return -1, err
	}

	d := &dev.Device{
		Id:          s.NextIDDev,
		Info:        info,
		EventBroker: s.EventBroker,
		Gateways:    s.gatewayReceivers,
	}
	d.Setup(s.Environment, s.param, s.rng, s.opts...)
	s.Devices[d.Id] = d
	s.NextIDDev++

	if s.State == util.Running && info.Status.Active {
		s.turnONDevice(d)
	}
	s.updateMetrics()
	slog.Debug("device added", "component", "simulator", "dev_eui", info.DevEUI, "id", d.Id)
	return d.Id, nil
}

// AddGateway registers a gateway; it turns on at once when the simulation is running and the gateway is active.
func (s *Simulator) AddGateway(info gwModels.InfoGateway) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addGateway(info)
}

func (s *Simulator) addGateway(info gwModels.InfoGateway) (int, error) {
	if !s.Environment.IsValid(info.Position) {
		return -1, fmt.Errorf("%w: %+v", ErrOutOfMap, info.Position)
	}
	if err := s.searchName(info.Name); err != nil {
		return -1, err
	}
	if err := s.searchAddress(info.MACAddress); err != nil {
		return -1, err
	}

	g := &gw.Gateway{
		Id:          s.NextIDGw,
		Info:        info,
		EventBroker: s.EventBroker,
	}
	g.Setup(s.Environment, s.param, s.rng, s.opts...)
	s.Gateways[g.Id] = g
	s.NextIDGw++

	if s.State == util.Running && info.Active {
		s.turnONGateway(g)
	}
	s.updateMetrics()
	slog.Debug("gateway added", "component", "simulator", "gateway_mac", info.MACAddress, "id", g.Id)
	return g.Id, nil
}

// DeleteDevice stops and removes a mote.
func (s *Simulator) DeleteDevice(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.device(id)
	if err != nil {
		return err
	}
	d.Reset()
	delete(s.Devices, id)
	s.EventBroker.RemoveDevice(d.Info.DevEUI.String())
	s.updateMetrics()
	return nil
}

// DeleteGateway turns off and removes a gateway.
func (s *Simulator) DeleteGateway(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gateway(id)
	if err != nil {
		return err
	}
	g.Reset()
	delete(s.Gateways, id)
	s.EventBroker.RemoveGateway(g.Info.MACAddress.String())
	s.updateMetrics()
	return nil
}

// GetDevices returns a snapshot of the motes ordered by id.
func (s *Simulator) GetDevices() []dev.Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := make([]dev.Device, 0, len(s.Devices))
	for _, d := range s.Devices {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Id < devices[j].Id })
	return devices
}

// GetGateways returns a snapshot of the gateways ordered by id.
func (s *Simulator) GetGateways() []gw.Gateway {
	s.mu.Lock()
	defer s.mu.Unlock()

	gateways := make([]gw.Gateway, 0, len(s.Gateways))
	for _, g := range s.Gateways {
		gateways = append(gateways, *g)
	}
	sort.Slice(gateways, func(i, j int) bool { return gateways[i].Id < gateways[j].Id })
	return gateways
}

// EntityByEUI finds a mote or a gateway by its identifier.
func (s *Simulator) EntityByEUI(eui lorawan.EUI64) (radio.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.Devices {
		if d.Info.DevEUI == eui {
			return d, nil
		}
	}
	for _, g := range s.Gateways {
		if g.Info.MACAddress == eui {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, eui)
}

// SendUplink transmits payload from a mote at the current simulated time.
// queued reports that the mote was busy and the frame waits for the channel.
func (s *Simulator) SendUplink(id int, payload []byte) (tx *radio.Transmission, queued bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.device(id)
	if err != nil {
		return nil, false, err
	}
	return d.Uplink(payload)
}

// SendDownlink transmits payload from a gateway to a mote.
func (s *Simulator) SendDownlink(gwID, devID int, payload []byte) (*radio.Transmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gateway(gwID)
	if err != nil {
		return nil, err
	}
	d, err := s.device(devID)
	if err != nil {
		return nil, err
	}
	return g.Downlink(d, d.Info.DevAddr, uint32(d.Info.Status.Downlinks), payload)
}

// Transmissions drains the frames a gateway collected since the last call.
func (s *Simulator) Transmissions(gwID int) ([]radio.Transmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gateway(gwID)
	if err != nil {
		return nil, err
	}
	return g.Received(), nil
}

// MoveDevice places a mote on another cell.
func (s *Simulator) MoveDevice(id int, p environment.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.device(id)
	if err != nil {
		return err
	}
	if !s.Environment.IsValid(p) {
		return fmt.Errorf("%w: %+v", ErrOutOfMap, p)
	}
	d.MoveTo(p)
	return nil
}

// StepDevice moves a mote one cell toward target and reports whether it moved.
func (s *Simulator) StepDevice(id int, target location.Location) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.device(id)
	if err != nil {
		return false, err
	}
	p, moved := s.Environment.StepToward(d.Position(), target)
	if !moved {
		return false, nil
	}
	if !s.Environment.IsValid(p) {
		return false, fmt.Errorf("%w: %+v", ErrOutOfMap, p)
	}
	d.MoveTo(p)
	return true, nil
}

// WayPoints returns a copy of the waypoints motes can walk toward.
func (s *Simulator) WayPoints() []location.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]location.Location(nil), s.Environment.WayPoints()...)
}

// AddWayPoint registers a waypoint and returns its index.
func (s *Simulator) AddWayPoint(p location.Location) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Environment.AddWayPoint(p)
	s.publish(events.SysEventWayPoint, fmt.Sprintf("Waypoint %d added", len(s.Environment.WayPoints())-1), false)
	return len(s.Environment.WayPoints()) - 1
}

// StepDeviceToWayPoint moves a mote one cell toward the waypoint at index wp.
func (s *Simulator) StepDeviceToWayPoint(id, wp int) (bool, error) {
	s.mu.Lock()
	points := s.Environment.WayPoints()
	if wp < 0 || wp >= len(points) {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %d", ErrWayPointNotFound, wp)
	}
	target := points[wp]
	s.mu.Unlock()

	return s.StepDevice(id, target)
}

// Tick advances the virtual clock by d and returns the number of callbacks fired.
func (s *Simulator) Tick(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Environment.Clock.Tick(d)
}

// Drive advances the virtual clock by step every resolution of wall-clock time
// until ctx is done.
func (s *Simulator) Drive(ctx context.Context, resolution, step time.Duration) error {
	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	slog.Info("clock driver started", "component", "simulator", "resolution", resolution, "step", step)
	for {
		select {
		case <-ctx.Done():
			slog.Info("clock driver stopped", "component", "simulator")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(step)
		}
	}
}

// Reset stops the simulation, rewinds the clock and clears every counter and the event history.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	shared.DebugPrint("Resetting simulator")
	for _, d := range s.Devices {
		d.Reset()
	}
	for _, g := range s.Gateways {
		g.Reset()
	}
	s.stop()
	s.Environment.Reset()
	s.EventBroker.Reset()

	slog.Debug("simulator reset", "component", "simulator")
	s.publish(events.SysEventReset, "Simulator reset", false)
}

// AddRun counts one more run on the current configuration.
func (s *Simulator) AddRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Environment.AddRun()
}

func (s *Simulator) GetEventBroker() *events.EventBroker {
	return s.EventBroker
}
