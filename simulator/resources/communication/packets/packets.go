package packets

import (
	"github.com/brocaar/lorawan"
)

// LoRaWAN defaults for uplink frames.
const (
	DefaultPreambleSymbols = 8
	DefaultFPort           = 1
)

// FrameHeader carries the LoRaWAN FHDR fields relevant to the simulation.
type FrameHeader struct {
	DevAddr lorawan.DevAddr `json:"devAddr"`
	FCnt    uint32          `json:"fCnt"`
	FPort   uint8           `json:"fPort"`
	FOpts   []byte          `json:"fOpts"`
}

// LoraWanPacket is an outbound frame and the physical-layer settings that
// determine how long it occupies the channel. It is not modified once built.
type LoraWanPacket struct {
	Payload                 []byte      `json:"payload"`
	Header                  bool        `json:"header"` // explicit PHY header
	LowDataRateOptimization bool        `json:"lowDataRateOptimization"`
	PreambleSymbols         int         `json:"preambleSymbols"`
	CodingRate              int         `json:"codingRate"`
	FrameHeader             FrameHeader `json:"frameHeader"`
}

// NewLoraWanPacket builds an explicit-header frame with the default preamble.
func NewLoraWanPacket(devAddr lorawan.DevAddr, fCnt uint32, payload []byte, fOpts []byte) *LoraWanPacket {
	return &LoraWanPacket{
		Payload:         payload,
		Header:          true,
		PreambleSymbols: DefaultPreambleSymbols,
		CodingRate:      1,
		FrameHeader: FrameHeader{
			DevAddr: devAddr,
			FCnt:    fCnt,
			FPort:   DefaultFPort,
			FOpts:   fOpts,
		},
	}
}

// Size returns the number of bytes counted against the regional maximum.
func (p *LoraWanPacket) Size() int {
	return len(p.Payload) + len(p.FrameHeader.FOpts)
}

// PHYPayload returns the frame as a LoRaWAN PHYPayload. The MIC is left zero.
func (p *LoraWanPacket) PHYPayload(mtype lorawan.MType) lorawan.PHYPayload {
	fPort := p.FrameHeader.FPort
	mac := &lorawan.MACPayload{
		FHDR: lorawan.FHDR{
			DevAddr: p.FrameHeader.DevAddr,
			FCnt:    p.FrameHeader.FCnt,
		},
		FPort: &fPort,
	}
	if len(p.FrameHeader.FOpts) > 0 {
		mac.FHDR.FOpts = []lorawan.Payload{&lorawan.DataPayload{Bytes: p.FrameHeader.FOpts}}
	}
	if len(p.Payload) > 0 {
		mac.FRMPayload = []lorawan.Payload{&lorawan.DataPayload{Bytes: p.Payload}}
	}

	return lorawan.PHYPayload{
		MHDR: lorawan.MHDR{
			MType: mtype,
			Major: lorawan.LoRaWANR1,
		},
		MACPayload: mac,
	}
}

// MarshalFrame encodes the frame as it would appear on air.
func (p *LoraWanPacket) MarshalFrame(mtype lorawan.MType) ([]byte, error) {
	phy := p.PHYPayload(mtype)
	return phy.MarshalBinary()
}
