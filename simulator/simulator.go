package simulator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/brocaar/lorawan"
	"github.com/brocaar/lorawan/band"

	"github.com/R3DPanda1/LWN-PHY-Sim/models"
	dev "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device"
	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	gw "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/metrics"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/util"
)

var (
	ErrDeviceNotFound   = errors.New("device not found")
	ErrGatewayNotFound  = errors.New("gateway not found")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrOutOfMap         = errors.New("position outside the map")
	ErrDuplicateEUI     = errors.New("EUI already used")
	ErrDuplicateName    = errors.New("name already used")
	ErrWayPointNotFound = errors.New("waypoint not found")
)

// Simulator is a model
type Simulator struct {
	mu sync.Mutex

	State       uint8                    `json:"-"` // Runtime state: Stop, Running
	Environment *environment.Environment `json:"-"`
	Devices     map[int]*dev.Device      `json:"-"` // A collection of devices
	Gateways    map[int]*gw.Gateway      `json:"-"` // A collection of gateways
	NextIDDev   int                      `json:"nextIDDev"`
	NextIDGw    int                      `json:"nextIDGw"`

	EventBroker *events.EventBroker `json:"-"`
	Events      models.EventsConfig `json:"-"`

	param *rp.RegionalParameter
	opts  []radio.Option
	rng   *rand.Rand
}

// Status is a snapshot of the simulation.
type Status struct {
	Running  bool          `json:"running"`
	SimTime  time.Duration `json:"simTime"`
	Pending  int           `json:"pending"`
	Runs     int           `json:"runs"`
	Devices  int           `json:"devices"`
	Gateways int           `json:"gateways"`
	Channel  string        `json:"channel"`

	Center    location.Location `json:"center"`
	WayPoints int               `json:"wayPoints"`
}

// regionalParameter resolves the channel configuration of the scenario.
func regionalParameter(cfg models.RadioConfig) (*rp.RegionalParameter, error) {
	if cfg.Band != "" {
		return rp.FromBand(band.Name(cfg.Band), cfg.DataRate)
	}
	return rp.New(cfg.SpreadingFactor, cfg.Bandwidth, cfg.MaximumPayloadSize, cfg.CodingRate)
}

// engineOptions maps the scenario switches onto the transmission engine.
func engineOptions(cfg models.RadioConfig) []radio.Option {
	var opts []radio.Option
	if cfg.LegacySizeCheck {
		opts = append(opts, radio.WithSizeCheck(radio.SizeCheckLegacy))
	}
	if cfg.HoldOnNoDelivery {
		opts = append(opts, radio.WithHoldOnNoDelivery(true))
	}
	if cfg.DeliverAll {
		opts = append(opts, radio.WithDeliveryPolicy(radio.DeliverAll))
	}
	return opts
}

// setup initializes the event broker and the maps for gateways and devices
func (s *Simulator) setup() {
	perDevice, perGateway := s.Events.HistoryPerDevice, s.Events.HistoryPerGateway
	if perDevice <= 0 {
		perDevice = 100
	}
	if perGateway <= 0 {
		perGateway = perDevice
	}
	s.EventBroker = events.NewEventBrokerWithHistory(perDevice, perGateway)
	s.Devices = make(map[int]*dev.Device)
	s.Gateways = make(map[int]*gw.Gateway)
	s.State = util.Stopped
}

func (s *Simulator) publish(eventType, msg string, isError bool) {
	s.EventBroker.PublishSystemEvent(events.SystemEvent{
		SimTime: s.Environment.Clock.Now(),
		Type:    eventType,
		Message: msg,
		IsError: isError,
	})
}

// gatewayReceivers lists the running gateways ordered by id, which is the
// order in which an uplink looks for a receiver.
func (s *Simulator) gatewayReceivers() []radio.Receiver {
	ids := make([]int, 0, len(s.Gateways))
	for id, g := range s.Gateways {
		if g.IsOn() {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	receivers := make([]radio.Receiver, len(ids))
	for i, id := range ids {
		receivers[i] = s.Gateways[id]
	}
	return receivers
}

func (s *Simulator) searchName(name string) error {
	for _, g := range s.Gateways {
		if g.Info.Name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}
	for _, d := range s.Devices {
		if d.Info.Name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}
	return nil
}

func (s *Simulator) searchAddress(address lorawan.EUI64) error {
	for _, g := range s.Gateways {
		if g.Info.MACAddress == address {
			return fmt.Errorf("%w: MAC address %s", ErrDuplicateEUI, address)
		}
	}
	for _, d := range s.Devices {
		if d.Info.DevEUI == address {
			return fmt.Errorf("%w: DevEUI %s", ErrDuplicateEUI, address)
		}
	}
	return nil
}

func (s *Simulator) turnONDevice(d *dev.Device) {
	d.Start()
	slog.Info("device turned on", "component", "simulator", "dev_eui", d.Info.DevEUI, "name", d.Info.Name)
}

func (s *Simulator) turnONGateway(g *gw.Gateway) {
	g.TurnON()
}

// updateMetrics refreshes the entity gauges.
func (s *Simulator) updateMetrics() {
	running, stopped := 0, 0
	for _, d := range s.Devices {
		if d.CanExecute() {
			running++
		} else {
			stopped++
		}
	}
	metrics.DevicesTotal.WithLabelValues("running").Set(float64(running))
	metrics.DevicesTotal.WithLabelValues("stopped").Set(float64(stopped))

	running, stopped = 0, 0
	for _, g := range s.Gateways {
		if g.IsOn() {
			running++
		} else {
			stopped++
		}
	}
	metrics.GatewaysTotal.WithLabelValues("running").Set(float64(running))
	metrics.GatewaysTotal.WithLabelValues("stopped").Set(float64(stopped))
}

func (s *Simulator) device(id int) (*dev.Device, error) {
	d, ok := s.Devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrDeviceNotFound, id)
	}
	return d, nil
}

func (s *Simulator) gateway(id int) (*gw.Gateway, error) {
	g, ok := s.Gateways[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrGatewayNotFound, id)
	}
	return g, nil
}
