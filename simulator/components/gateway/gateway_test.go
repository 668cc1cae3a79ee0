package gateway

import (
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/brocaar/lorawan"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/gateway/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
)

type mote struct {
	eui lorawan.EUI64
	pos environment.Position
	got []radio.Transmission
}

func (m *mote) EUI() lorawan.EUI64              { return m.eui }
func (m *mote) Position() environment.Position { return m.pos }
func (m *mote) Role() radio.Role                { return radio.RoleMote }
func (m *mote) Receive(tx radio.Transmission)   { m.got = append(m.got, tx) }

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	env := environment.NewUniform(10, 10, environment.Characteristic{}, location.Location{})
	param, err := rp.New(7, 125000, 51, 1)
	if err != nil {
		t.Fatalf("regional parameter: %v", err)
	}

	g := &Gateway{
		Info: models.InfoGateway{
			Name:              "gw-1",
			MACAddress:        lorawan.EUI64{0xaa, 0xbb, 0, 0, 0, 0, 0, 1},
			Position:          environment.Position{X: 4, Y: 4},
			TransmissionPower: 27,
			BufferSize:        4,
		},
		EventBroker: events.NewEventBroker(10),
	}
	g.Setup(env, param, rand.New(rand.NewSource(1)))
	return g
}

func TestReceiveBuffersFrame(t *testing.T) {
	g := newTestGateway(t)

	packet := packets.NewLoraWanPacket(lorawan.DevAddr{1, 2, 3, 4}, 3, []byte("hello"), nil)
	g.Receive(radio.Transmission{
		Sender:   lorawan.EUI64{0, 0, 0, 0, 0, 0, 0, 9},
		Receiver: g.EUI(),
		Power:    -90,
		Packet:   packet,
	})

	if g.Stat.RXNb != 1 {
		t.Errorf("rxnb = %d, want 1", g.Stat.RXNb)
	}
	got := g.Received()
	if len(got) != 1 || got[0].Packet != packet {
		t.Fatalf("unexpected buffer content %+v", got)
	}
	if len(g.Received()) != 0 {
		t.Error("buffer should be empty after draining")
	}

	_, history, unsubscribe := g.EventBroker.Subscribe(events.GatewayTopic(g.Info.MACAddress.String()))
	defer unsubscribe()
	if len(history) != 1 {
		t.Fatalf("history has %d events, want 1", len(history))
	}
	ev := history[0].(events.GatewayEvent)
	if ev.Type != events.GwEventReceived || ev.DevEUI != "0000000000000009" {
		t.Errorf("unexpected event %+v", ev)
	}
	frame, err := packet.MarshalFrame(lorawan.UnconfirmedDataUp)
	if err != nil {
		t.Fatalf("MarshalFrame: %v", err)
	}
	if ev.Payload != hex.EncodeToString(frame) {
		t.Errorf("payload = %s, want %x", ev.Payload, frame)
	}
}

func TestDownlink(t *testing.T) {
	g := newTestGateway(t)
	dev := &mote{eui: lorawan.EUI64{0, 0, 0, 0, 0, 0, 0, 2}, pos: environment.Position{X: 0, Y: 0}}

	if _, err := g.Downlink(dev, lorawan.DevAddr{1}, 0, []byte("ack")); err == nil {
		t.Fatal("downlink from a gateway turned off should fail")
	}

	g.TurnON()
	tx, err := g.Downlink(dev, lorawan.DevAddr{1}, 0, []byte("ack"))
	if err != nil {
		t.Fatalf("Downlink: %v", err)
	}
	if tx == nil || len(dev.got) != 1 {
		t.Fatalf("downlink not delivered: %v", tx)
	}
	if tx.Power != 27 {
		t.Errorf("power = %v, want 27", tx.Power)
	}
	if g.Stat.TXNb != 1 || g.Stat.DWNb != 1 {
		t.Errorf("unexpected stat %+v", g.Stat)
	}

	if _, err := g.Downlink(dev, lorawan.DevAddr{1}, 1, []byte("ack")); err == nil {
		t.Error("downlink while on air should fail")
	}

	g.TurnOFF()
	if g.IsOn() || g.Communication.IsTransmitting() {
		t.Error("turning off should stop the gateway and free the channel")
	}
}

func TestBufferOverflowKeepsNewest(t *testing.T) {
	g := newTestGateway(t)

	for i := 0; i < 6; i++ {
		g.Receive(radio.Transmission{
			Packet: packets.NewLoraWanPacket(lorawan.DevAddr{}, uint32(i), nil, nil),
		})
	}

	got := g.Received()
	if len(got) != 4 {
		t.Fatalf("buffered %d frames, want 4", len(got))
	}
	if got[0].Packet.FrameHeader.FCnt != 2 {
		t.Errorf("oldest kept fcnt = %d, want 2", got[0].Packet.FrameHeader.FCnt)
	}
	if g.Stat.RXNb != 6 {
		t.Errorf("rxnb = %d, want 6", g.Stat.RXNb)
	}
}
