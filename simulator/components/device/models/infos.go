package models

import (
	"time"

	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
)

// InformationDevice is the persisted description of a mote.
type InformationDevice struct {
	Name          string               `json:"name"`
	DevEUI        lorawan.EUI64        `json:"devEUI"`
	DevAddr       lorawan.DevAddr      `json:"devAddr"`
	Position      environment.Position `json:"position"`
	Configuration Configuration        `json:"configuration"`
	Status        Status               `json:"status"`
}

// Configuration holds the radio settings of a mote.
type Configuration struct {
	TransmissionPower       float64       `json:"transmissionPower"` // dBm
	SendInterval            time.Duration `json:"sendInterval"`      // simulated time between periodic uplinks
	PayloadSize             int           `json:"payloadSize"`       // bytes of periodic uplinks
	LowDataRateOptimization bool          `json:"lowDataRateOptimization"`
}

// Status holds the runtime counters of a mote.
type Status struct {
	Active    bool   `json:"active"`
	FCnt      uint32 `json:"fCnt"`
	Sent      int    `json:"sent"`
	Delivered int    `json:"delivered"`
	Lost      int    `json:"lost"`
	Queued    int    `json:"queued"`
	Downlinks int    `json:"downlinks"`
}
