package models

import (
	"fmt"

	devModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	gwModels "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
)

// Zone overrides the terrain of a rectangle of cells, bounds included.
type Zone struct {
	X0      int    `json:"x0"`
	Y0      int    `json:"y0"`
	X1      int    `json:"x1"`
	Y1      int    `json:"y1"`
	Terrain string `json:"terrain,omitempty"` // preset name, ignored when Characteristic is set

	Characteristic *environment.Characteristic `json:"characteristic,omitempty"`
}

// RadioConfig selects the regional parameter and the engine behaviour shared by every entity.
type RadioConfig struct {
	Band     string `json:"band,omitempty"` // e.g. "EU868"; empty selects the explicit values below
	DataRate int    `json:"dataRate"`

	SpreadingFactor    int `json:"spreadingFactor,omitempty"`
	Bandwidth          int `json:"bandwidth,omitempty"` // Hz
	MaximumPayloadSize int `json:"maximumPayloadSize,omitempty"`
	CodingRate         int `json:"codingRate,omitempty"`

	LegacySizeCheck  bool `json:"legacySizeCheck"`
	HoldOnNoDelivery bool `json:"holdOnNoDelivery"`
	DeliverAll       bool `json:"deliverAll"`
}

// Scenario describes the map and the entities loaded at startup.
type Scenario struct {
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Terrain string            `json:"terrain"` // preset applied to the whole map
	Zones   []Zone            `json:"zones"`
	Origin  location.Location `json:"origin"`
	Radio   RadioConfig       `json:"radio"`
	Seed    int64             `json:"seed"` // 0 seeds from the wall clock

	WayPoints []location.Location `json:"wayPoints"` // geographic targets motes can walk toward

	Devices  []devModels.InformationDevice `json:"devices"`
	Gateways []gwModels.InfoGateway        `json:"gateways"`
}

// DefaultScenario is a small free-space map with an SF7 channel.
func DefaultScenario() Scenario {
	return Scenario{
		Width:   100,
		Height:  100,
		Terrain: "plain",
		Radio: RadioConfig{
			Band:     "EU868",
			DataRate: 5,
		},
	}
}

// Cells builds the characteristic matrix, indexed [x][y].
func (s Scenario) Cells() ([][]environment.Characteristic, error) {
	if s.Width < 0 || s.Height < 0 {
		return nil, fmt.Errorf("invalid map size %dx%d", s.Width, s.Height)
	}
	base, ok := environment.Preset(s.Terrain)
	if !ok {
		return nil, fmt.Errorf("unknown terrain %q", s.Terrain)
	}

	cells := make([][]environment.Characteristic, s.Width)
	for x := range cells {
		cells[x] = make([]environment.Characteristic, s.Height)
		for y := range cells[x] {
			cells[x][y] = base
		}
	}

	for i, z := range s.Zones {
		c, err := z.characteristic()
		if err != nil {
			return nil, fmt.Errorf("zone %d: %w", i, err)
		}
		for x := max(z.X0, 0); x <= min(z.X1, s.Width-1); x++ {
			for y := max(z.Y0, 0); y <= min(z.Y1, s.Height-1); y++ {
				cells[x][y] = c
			}
		}
	}
	return cells, nil
}

func (z Zone) characteristic() (environment.Characteristic, error) {
	if z.Characteristic != nil {
		return *z.Characteristic, nil
	}
	c, ok := environment.Preset(z.Terrain)
	if !ok {
		return c, fmt.Errorf("unknown terrain %q", z.Terrain)
	}
	return c, nil
}
