package device

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/models"
	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/events"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/util"
)

// Setup attaches the device to env and builds its transmission engine.
// Options are applied after the defaults derived from the configuration.
func (d *Device) Setup(env *environment.Environment, param *rp.RegionalParameter, rng *rand.Rand, opts ...radio.Option) {
	d.Clock = env.Clock
	d.rng = rng
	d.State = util.Stopped

	base := []radio.Option{
		radio.WithRegionalParameter(param),
		radio.WithTransmissionPower(d.Info.Configuration.TransmissionPower),
		radio.WithReleaseHook(d.onRelease),
	}
	if rng != nil {
		base = append(base, radio.WithRand(rng))
	}
	d.Communication = radio.NewLoraCommunication(d, env, env.Clock, append(base, opts...)...)
}

// CanExecute reports whether the device takes part in the simulation.
func (d *Device) CanExecute() bool {
	return d.State != util.Stopped
}

// Start schedules periodic uplinks every SendInterval of simulated time.
func (d *Device) Start() {
	if d.State == util.Running {
		return
	}
	d.State = util.Running

	interval := d.Info.Configuration.SendInterval
	if interval <= 0 {
		slog.Debug("no send interval, uplinks on demand only", "component", "device", "dev_eui", d.Info.DevEUI)
		return
	}
	d.job = d.Clock.Schedule(d.Clock.Now()+interval, func() time.Duration {
		if _, _, err := d.Uplink(d.randomPayload()); err != nil {
			slog.Error("periodic uplink failed", "component", "device", "dev_eui", d.Info.DevEUI, "error", err)
		}
		return d.Clock.Now() + interval
	})
	d.emitEvent(events.EventStatus, map[string]string{"status": "turned on"})
}

// Stop cancels periodic uplinks and any transmission on air.
func (d *Device) Stop() {
	if d.State == util.Stopped {
		return
	}
	d.State = util.Stopped
	if d.job != 0 {
		d.Clock.Remove(d.job)
		d.job = 0
	}
	d.silence()
	slog.Debug("device turned off", "component", "device", "dev_eui", d.Info.DevEUI)
	d.emitEvent(events.EventStatus, map[string]string{"status": "turned off"})
}

// MoveTo places the device on another cell.
func (d *Device) MoveTo(p environment.Position) {
	d.Info.Position = p
	d.emitEvent(events.EventMoved, map[string]string{"position": fmt.Sprintf("%d,%d", p.X, p.Y)})
}

// Reset clears the frame counter and the statistics.
func (d *Device) Reset() {
	d.Stop()
	d.silence()
	d.Info.Status = models.Status{Active: d.Info.Status.Active}
}

// silence aborts the transmission on air and drops the queued frames.
func (d *Device) silence() {
	d.Communication.Abort()
	for {
		if _, ok := d.Communication.Dequeue(); !ok {
			break
		}
	}
	d.Info.Status.Queued = 0
}

func (d *Device) randomPayload() []byte {
	b := make([]byte, d.Info.Configuration.PayloadSize)
	if d.rng != nil {
		d.rng.Read(b)
	}
	return b
}
