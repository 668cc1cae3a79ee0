// Package radio implements the LoRa physical layer of the simulation: how long a
// frame occupies the channel, how much power reaches each receiver across the
// terrain grid, and which receiver gets the frame.
package radio

import (
	"time"

	"github.com/brocaar/lorawan"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
)

// Role tells motes and gateways apart.
type Role uint8

const (
	RoleMote Role = iota
	RoleGateway
)

func (r Role) String() string {
	switch r {
	case RoleMote:
		return "mote"
	case RoleGateway:
		return "gateway"
	}
	return "unknown"
}

// Entity is anything placed on the map with a stable identity.
type Entity interface {
	EUI() lorawan.EUI64
	Position() environment.Position
	Role() Role
}

// Receiver is an entity that can be handed a transmission.
// Receive is called synchronously by the sending engine.
type Receiver interface {
	Entity
	Receive(Transmission)
}

// Grid gives access to the terrain cells.
type Grid interface {
	CharacteristicAt(x, y int) (environment.Characteristic, bool)
}

// Clock is the virtual clock the engine schedules its release on.
type Clock interface {
	Now() time.Duration
	Schedule(at time.Duration, fn func() time.Duration) uint64
	Remove(jobID uint64) bool
}

// Gaussian is a source of standard normal samples. *math/rand.Rand satisfies it.
type Gaussian interface {
	NormFloat64() float64
}

// Transmission is the result of delivering one packet to one receiver.
type Transmission struct {
	Sender            lorawan.EUI64          `json:"sender"`
	Receiver          lorawan.EUI64          `json:"receiver"`
	SenderPosition    environment.Position   `json:"senderPosition"`
	Power             float64                `json:"power"` // at the receiver
	RegionalParameter *rp.RegionalParameter  `json:"regionalParameter"`
	TimeOnAir         time.Duration          `json:"timeOnAir"`
	Departure         time.Duration          `json:"departure"` // simulated start time
	Packet            *packets.LoraWanPacket `json:"packet"`
}

// End returns the simulated instant at which the channel is free again.
func (t Transmission) End() time.Duration {
	return t.Departure + t.TimeOnAir
}
