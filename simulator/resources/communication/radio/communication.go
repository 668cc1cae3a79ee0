package radio

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/metrics"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
)

var (
	// ErrBusy is returned when Send is called while a transmission is still on
	// air. It signals a caller that does not serialize its sends.
	ErrBusy = errors.New("impossible to send two packets at the same time")
	// ErrPayloadTooLarge is returned when payload and FOpts exceed the
	// regional maximum.
	ErrPayloadTooLarge = errors.New("payload size greater than the max size")
	// ErrNoRegionalParameter is returned when Send is called before a
	// regional parameter was set.
	ErrNoRegionalParameter = errors.New("no regional parameter set")
)

// State of an engine.
type State uint8

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// SizeCheck selects how the payload size is compared with the regional maximum.
type SizeCheck uint8

const (
	// SizeCheckReject rejects payloads larger than the maximum.
	SizeCheckReject SizeCheck = iota
	// SizeCheckLegacy rejects payloads that do NOT exceed the maximum. Kept
	// to replay scenarios recorded with the historical inverted comparison.
	SizeCheckLegacy
)

// DeliveryPolicy selects which qualifying receivers get the packet.
type DeliveryPolicy uint8

const (
	// DeliverFirst hands the packet to the first qualifying receiver only.
	DeliverFirst DeliveryPolicy = iota
	// DeliverAll hands the packet to every qualifying receiver.
	DeliverAll
)

// Option configures a LoraCommunication at construction.
type Option func(*LoraCommunication)

// WithRand sets the source of the shadow fading samples.
func WithRand(g Gaussian) Option {
	return func(c *LoraCommunication) { c.rng = g }
}

// WithSizeCheck selects how the payload size is checked against the regional maximum.
func WithSizeCheck(s SizeCheck) Option {
	return func(c *LoraCommunication) { c.sizeCheck = s }
}

// WithHoldOnNoDelivery keeps the engine busy forever after a send nobody
// received (only Abort frees it). By default the channel is released after
// the time on air whatever the outcome.
func WithHoldOnNoDelivery(hold bool) Option {
	return func(c *LoraCommunication) { c.holdOnNoDelivery = hold }
}

// WithDeliveryPolicy selects which qualifying receivers get the packet.
func WithDeliveryPolicy(p DeliveryPolicy) Option {
	return func(c *LoraCommunication) { c.policy = p }
}

// WithReleaseHook registers fn to run every time the engine returns to Idle
// through its scheduled release.
func WithReleaseHook(fn func()) Option {
	return func(c *LoraCommunication) { c.onRelease = fn }
}

// WithTransmissionPower sets the output power in dBm.
func WithTransmissionPower(power float64) Option {
	return func(c *LoraCommunication) { c.transmissionPower = power }
}

// WithRegionalParameter sets the channel used for time on air and sensitivity.
func WithRegionalParameter(param *rp.RegionalParameter) Option {
	return func(c *LoraCommunication) { c.regionalParameter = param }
}

// LoraCommunication is the transmission engine of one entity. It sends at most
// one packet at a time; the engine goes back to Idle when the virtual clock
// reaches the end of the time on air.
//
// It is not safe for concurrent use: confine it to the goroutine driving the clock.
type LoraCommunication struct {
	sender Entity
	grid   Grid
	clock  Clock
	rng    Gaussian

	regionalParameter *rp.RegionalParameter
	transmissionPower float64

	state        State
	current      *packets.LoraWanPacket
	releaseJob   uint64
	sendingQueue []*packets.LoraWanPacket

	sizeCheck        SizeCheck
	holdOnNoDelivery bool
	policy           DeliveryPolicy
	onRelease        func()
}

func NewLoraCommunication(sender Entity, grid Grid, clock Clock, opts ...Option) *LoraCommunication {
	c := &LoraCommunication{
		sender: sender,
		grid:   grid,
		clock:  clock,
		state:  Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return c
}

// Send transmits packet to the first receiver (in slice order) whose arrival
// power clears the sensitivity threshold, and returns the resulting
// transmission. A nil transmission with a nil error means nobody was in range.
func (c *LoraCommunication) Send(packet *packets.LoraWanPacket, receivers []Receiver) (*Transmission, error) {
	if c.state == Busy {
		return nil, ErrBusy
	}
	if c.regionalParameter == nil {
		return nil, ErrNoRegionalParameter
	}
	if err := c.checkSize(packet); err != nil {
		metrics.TransmissionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	c.state = Busy
	c.current = packet

	param := c.regionalParameter
	now := c.clock.Now()
	toa := TimeOnAir(packet, param)
	senderPos := c.sender.Position()

	var delivered *Transmission
	for _, r := range receivers {
		tx := Transmission{
			Sender:            c.sender.EUI(),
			Receiver:          r.EUI(),
			SenderPosition:    senderPos,
			Power:             MoveTo(c.grid, r.Position(), senderPos, c.transmissionPower, c.rng),
			RegionalParameter: param,
			TimeOnAir:         toa,
			Departure:         now,
			Packet:            packet,
		}
		if !Strong(tx.Power, param) {
			slog.Debug("signal too weak", "component", "radio", "sender", tx.Sender, "receiver", tx.Receiver, "power", tx.Power)
			continue
		}

		r.Receive(tx)
		metrics.ReceptionsTotal.Inc()
		metrics.ArrivalPower.Observe(tx.Power)
		if delivered == nil {
			delivered = &tx
		}
		if c.policy == DeliverFirst {
			break
		}
	}

	metrics.TimeOnAir.Observe(toa.Seconds())
	if delivered != nil {
		metrics.TransmissionsTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()
	} else {
		metrics.TransmissionsTotal.WithLabelValues(metrics.OutcomeLost).Inc()
	}

	if delivered != nil || !c.holdOnNoDelivery {
		c.releaseJob = c.clock.Schedule(now+toa, c.release)
	} else {
		slog.Warn("no receiver in range, channel held", "component", "radio", "sender", c.sender.EUI())
	}

	slog.Debug("packet sent", "component", "radio", "sender", c.sender.EUI(), "time_on_air", toa, "delivered", delivered != nil)
	return delivered, nil
}

func (c *LoraCommunication) checkSize(packet *packets.LoraWanPacket) error {
	size := packet.Size()
	maxSize := c.regionalParameter.MaximumPayloadSize

	tooLarge := size > maxSize
	if c.sizeCheck == SizeCheckLegacy {
		tooLarge = maxSize >= size
	}
	if tooLarge {
		return fmt.Errorf("%w: payload size %d, max allowed with %s is %d", ErrPayloadTooLarge, size, c.regionalParameter, maxSize)
	}
	return nil
}

func (c *LoraCommunication) release() time.Duration {
	c.state = Idle
	c.current = nil
	c.releaseJob = 0
	slog.Debug("channel released", "component", "radio", "sender", c.sender.EUI())
	if c.onRelease != nil {
		c.onRelease()
	}
	return 0
}

// Abort cancels the transmission on air, if any, and returns the engine to
// Idle without running the release hook. It reports whether a transmission
// was aborted.
func (c *LoraCommunication) Abort() bool {
	if c.state != Busy {
		return false
	}
	if c.releaseJob != 0 {
		c.clock.Remove(c.releaseJob)
	}
	c.state = Idle
	c.current = nil
	c.releaseJob = 0
	return true
}

func (c *LoraCommunication) State() State { return c.state }

func (c *LoraCommunication) IsTransmitting() bool { return c.state == Busy }

// TransmittingMessage returns the packet on air, or nil.
func (c *LoraCommunication) TransmittingMessage() *packets.LoraWanPacket { return c.current }

// Enqueue appends packet to the sending queue. The engine never drains the
// queue itself; owners do it from the release hook.
func (c *LoraCommunication) Enqueue(packet *packets.LoraWanPacket) {
	c.sendingQueue = append(c.sendingQueue, packet)
}

// Dequeue pops the oldest queued packet.
func (c *LoraCommunication) Dequeue() (*packets.LoraWanPacket, bool) {
	if len(c.sendingQueue) == 0 {
		return nil, false
	}
	p := c.sendingQueue[0]
	c.sendingQueue[0] = nil
	c.sendingQueue = c.sendingQueue[1:]
	return p, true
}

func (c *LoraCommunication) SendingQueue() []*packets.LoraWanPacket {
	return c.sendingQueue
}

func (c *LoraCommunication) SetTransmissionPower(power float64) *LoraCommunication {
	c.transmissionPower = power
	return c
}

func (c *LoraCommunication) TransmissionPower() float64 { return c.transmissionPower }

func (c *LoraCommunication) SetRegionalParameter(param *rp.RegionalParameter) *LoraCommunication {
	c.regionalParameter = param
	return c
}

func (c *LoraCommunication) RegionalParameter() *rp.RegionalParameter { return c.regionalParameter }
