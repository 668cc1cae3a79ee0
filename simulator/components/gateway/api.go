package gateway

import (
	"log/slog"
	"math/rand"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/buffer"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/util"
)

// Setup attaches the gateway to env and builds its downlink engine.
func (g *Gateway) Setup(env *environment.Environment, param *rp.RegionalParameter, rng *rand.Rand, opts ...radio.Option) {

	g.State = util.Stopped
	g.Clock = env.Clock

	size := g.Info.BufferSize
	if size <= 0 {
		size = buffer.DefaultBufferSize
	}
	g.BufferUplink = buffer.NewBufferUplink(size)

	base := []radio.Option{
		radio.WithRegionalParameter(param),
		radio.WithTransmissionPower(g.Info.TransmissionPower),
	}
	if rng != nil {
		base = append(base, radio.WithRand(rng))
	}
	g.Communication = radio.NewLoraCommunication(g, env, env.Clock, append(base, opts...)...)

	slog.Debug("gateway setup complete", "component", "gateway", "gateway_mac", g.Info.MACAddress, "name", g.Info.Name)

}

func (g *Gateway) TurnON() {

	g.State = util.Running

	slog.Info("gateway turned on", "component", "gateway", "gateway_mac", g.Info.MACAddress, "name", g.Info.Name)
	g.emitEvent(events.GwEventStatus, map[string]string{"status": "turned on"})
}

func (g *Gateway) TurnOFF() {

	g.State = util.Stopped
	g.Communication.Abort()

	g.emitEvent(events.GwEventStatus, map[string]string{"status": "turned off"})
}

func (g *Gateway) IsOn() bool {

	if g.State == util.Running {
		return true
	}

	return false

}

// Received drains the frames collected since the last call.
func (g *Gateway) Received() []radio.Transmission {
	return g.BufferUplink.Drain()
}

// Reset clears the statistics and the collected frames.
func (g *Gateway) Reset() {
	g.TurnOFF()
	g.Stat = models.Stat{}
	g.BufferUplink.Drain()
}
