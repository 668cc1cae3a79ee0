package device

import (
	"errors"
	"log/slog"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
)

// Uplink builds the next frame and transmits it to the gateways in range.
// While the engine is busy the frame is queued instead and queued reports
// true; it goes on air when the current transmission is released.
func (d *Device) Uplink(payload []byte) (tx *radio.Transmission, queued bool, err error) {
	packet := packets.NewLoraWanPacket(d.Info.DevAddr, d.Info.Status.FCnt, payload, nil)
	packet.LowDataRateOptimization = d.Info.Configuration.LowDataRateOptimization
	d.Info.Status.FCnt++

	if d.Communication.IsTransmitting() {
		d.Communication.Enqueue(packet)
		d.Info.Status.Queued++
		slog.Debug("uplink queued", "component", "device", "dev_eui", d.Info.DevEUI, "fcnt", packet.FrameHeader.FCnt)
		d.emitUplinkEvent(events.EventQueued, packet.FrameHeader.FCnt, packet.Size(), nil)
		return nil, true, nil
	}

	tx, err = d.send(packet)
	return tx, false, err
}

func (d *Device) send(packet *packets.LoraWanPacket) (*radio.Transmission, error) {
	var receivers []radio.Receiver
	if d.Gateways != nil {
		receivers = d.Gateways()
	}

	tx, err := d.Communication.Send(packet, receivers)
	if err != nil {
		if !errors.Is(err, radio.ErrBusy) {
			d.emitErrorEvent(err)
		}
		slog.Warn("uplink rejected", "component", "device", "dev_eui", d.Info.DevEUI, "error", err)
		return nil, err
	}

	d.Info.Status.Sent++
	fCnt := packet.FrameHeader.FCnt
	if tx == nil {
		d.Info.Status.Lost++
		slog.Debug("uplink lost", "component", "device", "dev_eui", d.Info.DevEUI, "fcnt", fCnt)
		d.emitUplinkEvent(events.EventLost, fCnt, packet.Size(), nil)
		return nil, nil
	}

	d.Info.Status.Delivered++
	slog.Debug("uplink delivered", "component", "device", "dev_eui", d.Info.DevEUI, "fcnt", fCnt, "gateway", tx.Receiver, "power", tx.Power)
	d.emitUplinkEvent(events.EventUp, fCnt, packet.Size(), tx)
	return tx, nil
}

// onRelease runs when the virtual clock frees the channel; the oldest queued
// frame, if any, goes on air at once.
func (d *Device) onRelease() {
	d.emitEvent(events.EventReleased, nil)
	packet, ok := d.Communication.Dequeue()
	if !ok {
		return
	}
	d.Info.Status.Queued--
	d.send(packet)
}

// Receive implements radio.Receiver for downlinks.
func (d *Device) Receive(tx radio.Transmission) {
	d.Info.Status.Downlinks++
	slog.Debug("downlink received", "component", "device", "dev_eui", d.Info.DevEUI, "gateway", tx.Sender, "power", tx.Power)

	fCnt := tx.Packet.FrameHeader.FCnt
	size := tx.Packet.Size()
	if d.EventBroker == nil {
		return
	}
	d.EventBroker.PublishDeviceEvent(d.Info.DevEUI.String(), events.DeviceEvent{
		SimTime:   tx.Departure,
		DevEUI:    d.Info.DevEUI.String(),
		DevName:   d.Info.Name,
		Type:      events.EventDownlink,
		FCnt:      &fCnt,
		Size:      &size,
		TimeOnAir: &tx.TimeOnAir,
		Power:     &tx.Power,
		GatewayID: tx.Sender.String(),
	})
}
