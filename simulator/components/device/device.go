package device

import (
	"math/rand"
	"time"

	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/scheduler"
)

// Device is a mote: it originates uplinks and may receive downlinks.
type Device struct {
	Id    int                      `json:"id"`
	Info  models.InformationDevice `json:"info"`
	State int                      `json:"-"`

	Communication *radio.LoraCommunication `json:"-"`
	Clock         *scheduler.Scheduler     `json:"-"`
	EventBroker   *events.EventBroker      `json:"-"`
	// Gateways returns the candidate receivers of an uplink, in delivery order.
	Gateways func() []radio.Receiver `json:"-"`

	rng *rand.Rand
	job uint64
}

func (d *Device) EUI() lorawan.EUI64 { return d.Info.DevEUI }

func (d *Device) Position() environment.Position { return d.Info.Position }

func (d *Device) Role() radio.Role { return radio.RoleMote }

func (d *Device) now() time.Duration {
	if d.Clock == nil {
		return 0
	}
	return d.Clock.Now()
}

func (d *Device) emitEvent(eventType string, extra map[string]string) {
	if d.EventBroker == nil {
		return
	}
	d.EventBroker.PublishDeviceEvent(d.Info.DevEUI.String(), events.DeviceEvent{
		SimTime: d.now(),
		DevEUI:  d.Info.DevEUI.String(),
		DevName: d.Info.Name,
		Type:    eventType,
		Extra:   extra,
	})
}

func (d *Device) emitUplinkEvent(eventType string, fCnt uint32, size int, tx *radio.Transmission) {
	if d.EventBroker == nil {
		return
	}
	event := events.DeviceEvent{
		SimTime: d.now(),
		DevEUI:  d.Info.DevEUI.String(),
		DevName: d.Info.Name,
		Type:    eventType,
		FCnt:    &fCnt,
		Size:    &size,
	}
	if tx != nil {
		event.TimeOnAir = &tx.TimeOnAir
		event.Power = &tx.Power
		event.GatewayID = tx.Receiver.String()
	}
	d.EventBroker.PublishDeviceEvent(d.Info.DevEUI.String(), event)
}

func (d *Device) emitErrorEvent(err error) {
	if d.EventBroker == nil {
		return
	}
	d.EventBroker.PublishDeviceEvent(d.Info.DevEUI.String(), events.DeviceEvent{
		SimTime: d.now(),
		DevEUI:  d.Info.DevEUI.String(),
		DevName: d.Info.Name,
		Type:    events.EventError,
		Extra:   map[string]string{"error": err.Error()},
	})
}
