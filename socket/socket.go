package socket

import "github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"

// Events received from clients
const (
	EventSendUplink          = "send-uplink"
	EventSendDownlink        = "send-downlink"
	EventChangeLocation      = "change-location"
	EventStepDevice          = "step-device"
	EventStreamDeviceEvents  = "stream-device-events"
	EventStopDeviceEvents    = "stop-device-events"
	EventStreamGatewayEvents = "stream-gateway-events"
	EventStopGatewayEvents   = "stop-gateway-events"
	EventStreamSystemEvents  = "stream-system-events"
)

// Events emitted to clients
const (
	EventDeviceEvent  = "device-event"
	EventGatewayEvent = "gateway-event"
	EventSystemEvent  = "system-event"
)

// NewPayload asks a device to transmit an uplink.
type NewPayload struct {
	Id      int    `json:"id"`
	Payload string `json:"payload"`
	Hex     bool   `json:"hex"` // payload is hex encoded, otherwise sent as text
}

// Downlink asks a gateway to transmit to a device.
type Downlink struct {
	GatewayId int    `json:"gatewayId"`
	DeviceId  int    `json:"deviceId"`
	Payload   string `json:"payload"`
	Hex       bool   `json:"hex"`
}

// NewLocation moves a device to another cell.
type NewLocation struct {
	Id       int                  `json:"id"`
	Position environment.Position `json:"position"`
}

// StepDevice walks a device one cell toward a registered waypoint.
type StepDevice struct {
	Id       int `json:"id"`
	WayPoint int `json:"wayPoint"`
}

// StreamRequest selects the topic of an event stream.
type StreamRequest struct {
	DevEUI     string `json:"devEUI,omitempty"`
	GatewayMAC string `json:"gatewayMAC,omitempty"`
}
