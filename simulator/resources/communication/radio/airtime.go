package radio

import (
	"math"
	"time"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
)

// TimeOnAirSeconds returns the channel occupancy of p in seconds.
//
// The coding rate is not applied to the payload symbol count.
// TODO: multiply the ceiling term by (CodingRate + 4) once scenarios are recalibrated.
func TimeOnAirSeconds(p *packets.LoraWanPacket, param *rp.RegionalParameter) float64 {
	sf := float64(param.SpreadingFactor)
	tSym := math.Pow(2, sf) / float64(param.Bandwidth)
	tPreamble := (float64(p.PreambleSymbols) + 4.25) * tSym

	implicit := 0.0
	if !p.Header {
		implicit = 1
	}
	ldro := 0.0
	if p.LowDataRateOptimization {
		ldro = 2
	}

	symbols := 0.0
	if div := 4 * (sf - ldro); div > 0 {
		symbols = (8*float64(len(p.Payload)) - 4*sf + 28 + 16 - 20*implicit) / div
	}
	symbols = 8 + math.Max(math.Ceil(symbols), 0)

	return symbols*tSym + tPreamble
}

// TimeOnAir returns the channel occupancy of p, truncated to the nanosecond.
func TimeOnAir(p *packets.LoraWanPacket, param *rp.RegionalParameter) time.Duration {
	return time.Duration(TimeOnAirSeconds(p, param) * float64(time.Second))
}
