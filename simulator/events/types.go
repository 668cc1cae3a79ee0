package events

import "time"

// Device event types
const (
	EventUp       = "up"
	EventQueued   = "queued"
	EventLost     = "lost"
	EventReleased = "released"
	EventDownlink = "downlink"
	EventMoved    = "moved"
	EventStatus   = "status"
	EventError    = "error"
)

// Gateway event types
const (
	GwEventReceived = "received"
	GwEventDownlink = "downlink"
	GwEventStatus   = "status"
	GwEventError    = "error"
)

// System event types
const (
	SysEventStarted  = "started"
	SysEventStopped  = "stopped"
	SysEventSetup    = "setup"
	SysEventTick     = "tick"
	SysEventReset    = "reset"
	SysEventWayPoint = "waypoint"
	SysEventError    = "error"
)

type DeviceEvent struct {
	ID        string            `json:"id"`
	Time      time.Time         `json:"time"`
	SimTime   time.Duration     `json:"simTime"`
	DevEUI    string            `json:"devEUI"`
	DevName   string            `json:"devName"`
	Type      string            `json:"type"`
	FCnt      *uint32           `json:"fCnt,omitempty"`
	Size      *int              `json:"size,omitempty"`
	TimeOnAir *time.Duration    `json:"timeOnAir,omitempty"`
	Power     *float64          `json:"power,omitempty"`
	GatewayID string            `json:"gatewayId,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

type GatewayEvent struct {
	ID         string            `json:"id"`
	Time       time.Time         `json:"time"`
	SimTime    time.Duration     `json:"simTime"`
	GatewayMAC string            `json:"gatewayMAC"`
	GwName     string            `json:"gwName"`
	Type       string            `json:"type"`
	DevEUI     string            `json:"devEUI,omitempty"`
	Power      *float64          `json:"power,omitempty"`
	Payload    string            `json:"payload,omitempty"` // hex encoded frame
	Extra      map[string]string `json:"extra,omitempty"`
}

type SystemEvent struct {
	ID      string        `json:"id"`
	Time    time.Time     `json:"time"`
	SimTime time.Duration `json:"simTime"`
	Type    string        `json:"type"`
	Message string        `json:"message"`
	IsError bool          `json:"isError"`
}

func DeviceTopic(devEUI string) string { return "device:" + devEUI }
func GatewayTopic(gwMAC string) string { return "gateway:" + gwMAC }

const SystemTopic = "system"
const ErrorsTopic = "errors"
