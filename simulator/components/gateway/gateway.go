package gateway

import (
	"time"

	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/buffer"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/scheduler"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/util"
)

type Gateway struct {
	Id   int                `json:"id"`
	Info models.InfoGateway `json:"info"`

	State int `json:"-"`

	Stat models.Stat `json:"stat"`

	Communication *radio.LoraCommunication `json:"-"`
	Clock         *scheduler.Scheduler     `json:"-"`
	BufferUplink  *buffer.BufferUplink     `json:"-"`
	EventBroker   *events.EventBroker      `json:"-"`
}

func (g *Gateway) EUI() lorawan.EUI64 { return g.Info.MACAddress }

func (g *Gateway) Position() environment.Position { return g.Info.Position }

func (g *Gateway) Role() radio.Role { return radio.RoleGateway }

func (g *Gateway) CanExecute() bool {

	if g.State == util.Stopped {
		return false
	}

	return true

}

func (g *Gateway) now() time.Duration {
	if g.Clock == nil {
		return 0
	}
	return g.Clock.Now()
}

func (g *Gateway) emitEvent(eventType string, extra map[string]string) {
	if g.EventBroker == nil {
		return
	}
	g.EventBroker.PublishGatewayEvent(g.Info.MACAddress.String(), events.GatewayEvent{
		SimTime:    g.now(),
		GatewayMAC: g.Info.MACAddress.String(),
		GwName:     g.Info.Name,
		Type:       eventType,
		Extra:      extra,
	})
}

func (g *Gateway) emitErrorEvent(err error) {
	if g.EventBroker == nil {
		return
	}
	g.EventBroker.PublishGatewayEvent(g.Info.MACAddress.String(), events.GatewayEvent{
		SimTime:    g.now(),
		GatewayMAC: g.Info.MACAddress.String(),
		GwName:     g.Info.Name,
		Type:       events.GwEventError,
		Extra:      map[string]string{"error": err.Error()},
	})
}
