package gateway

import (
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
)

// Receive implements radio.Receiver: the frame is stored in the uplink buffer
// until the owner drains it.
func (g *Gateway) Receive(tx radio.Transmission) {

	g.Stat.RXNb++
	g.BufferUplink.Push(tx)

	slog.Debug("uplink received", "component", "gateway", "gateway_mac", g.Info.MACAddress, "dev_eui", tx.Sender, "power", tx.Power)

	if g.EventBroker == nil {
		return
	}

	var payload string
	frame, err := tx.Packet.MarshalFrame(lorawan.UnconfirmedDataUp)
	if err != nil {
		slog.Warn("unable to marshal frame", "component", "gateway", "gateway_mac", g.Info.MACAddress, "error", err)
	} else {
		payload = hex.EncodeToString(frame)
	}

	g.EventBroker.PublishGatewayEvent(g.Info.MACAddress.String(), events.GatewayEvent{
		SimTime:    tx.Departure,
		GatewayMAC: g.Info.MACAddress.String(),
		GwName:     g.Info.Name,
		Type:       events.GwEventReceived,
		DevEUI:     tx.Sender.String(),
		Power:      &tx.Power,
		Payload:    payload,
	})
}

// Downlink transmits payload to dev through the gateway's own engine.
func (g *Gateway) Downlink(dev radio.Receiver, devAddr lorawan.DevAddr, fCnt uint32, payload []byte) (*radio.Transmission, error) {

	if !g.CanExecute() {
		return nil, fmt.Errorf("gateway %s is turned off", g.Info.MACAddress)
	}

	packet := packets.NewLoraWanPacket(devAddr, fCnt, payload, nil)
	tx, err := g.Communication.Send(packet, []radio.Receiver{dev})
	if err != nil {
		slog.Warn("downlink rejected", "component", "gateway", "gateway_mac", g.Info.MACAddress, "error", err)
		g.emitErrorEvent(err)
		return nil, err
	}

	g.Stat.TXNb++
	delivered := tx != nil
	if delivered {
		g.Stat.DWNb++
	}

	g.emitEvent(events.GwEventDownlink, map[string]string{
		"devEUI":    dev.EUI().String(),
		"delivered": fmt.Sprintf("%t", delivered),
	})

	return tx, nil
}
