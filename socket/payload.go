package socket

import (
	"encoding/hex"
	"fmt"
)

// Bytes decodes the payload of an uplink request.
func (p NewPayload) Bytes() ([]byte, error) {
	return decode(p.Payload, p.Hex)
}

// Bytes decodes the payload of a downlink request.
func (d Downlink) Bytes() ([]byte, error) {
	return decode(d.Payload, d.Hex)
}

func decode(payload string, isHex bool) ([]byte, error) {
	if !isHex {
		return []byte(payload), nil
	}
	b, err := hex.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return b, nil
}
