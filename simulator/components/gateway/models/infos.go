package models

import (
	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
)

// InfoGateway is the persisted description of a gateway.
type InfoGateway struct {
	Name              string               `json:"name"`
	MACAddress        lorawan.EUI64        `json:"macAddress"`
	Position          environment.Position `json:"position"`
	Active            bool                 `json:"active"`
	TransmissionPower float64              `json:"transmissionPower"` // dBm, for downlinks
	BufferSize        int                  `json:"bufferSize"`
}

// Stat counts the traffic seen by a gateway.
type Stat struct {
	RXNb int `json:"rxnb"` // frames received
	TXNb int `json:"txnb"` // downlinks sent
	DWNb int `json:"dwnb"` // downlinks delivered
}
