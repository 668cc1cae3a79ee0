package regional_parameters

import (
	"errors"
	"fmt"
	"math"

	"github.com/brocaar/lorawan"
	"github.com/brocaar/lorawan/band"
)

var (
	ErrInvalidSpreadingFactor = errors.New("spreading factor must be between 1 and 12")
	ErrInvalidBandwidth       = errors.New("bandwidth must be positive")
	ErrNotLoRa                = errors.New("data rate does not use LoRa modulation")
)

// RegionalParameter is the radio configuration a regulatory region allows for
// one data rate. It is never modified after creation and is shared by reference.
type RegionalParameter struct {
	Name               string `json:"name"`
	DataRate           int    `json:"dataRate"`
	SpreadingFactor    int    `json:"spreadingFactor"`
	Bandwidth          int    `json:"bandwidth"`          // Hz
	MaximumPayloadSize int    `json:"maximumPayloadSize"` // bytes, FRMPayload + FOpts
	CodingRate         int    `json:"codingRate"`         // 1..4 for 4/5..4/8
}

// New builds a regional parameter from explicit values.
func New(spreadingFactor, bandwidth, maxPayload, codingRate int) (*RegionalParameter, error) {
	if spreadingFactor < 1 || spreadingFactor > 12 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSpreadingFactor, spreadingFactor)
	}
	if bandwidth <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBandwidth, bandwidth)
	}
	return &RegionalParameter{
		Name:               fmt.Sprintf("SF%dBW%d", spreadingFactor, bandwidth/1000),
		DataRate:           -1,
		SpreadingFactor:    spreadingFactor,
		Bandwidth:          bandwidth,
		MaximumPayloadSize: maxPayload,
		CodingRate:         codingRate,
	}, nil
}

// FromBand derives the parameter of data rate dr in the given LoRaWAN band
// (e.g. band.EU868), using the LoRaWAN 1.0.3 rev A payload limits without
// repeater compatibility, so EU868 DR5 allows 242 bytes instead of 222.
func FromBand(name band.Name, dr int) (*RegionalParameter, error) {
	b, err := band.GetConfig(name, false, lorawan.DwellTimeNoLimit)
	if err != nil {
		return nil, fmt.Errorf("band %s: %w", name, err)
	}
	rate, err := b.GetDataRate(dr)
	if err != nil {
		return nil, fmt.Errorf("band %s DR%d: %w", name, dr, err)
	}
	if rate.Modulation != band.LoRaModulation {
		return nil, fmt.Errorf("band %s DR%d: %w", name, dr, ErrNotLoRa)
	}
	size, err := b.GetMaxPayloadSizeForDataRateIndex(band.LoRaWAN_1_0_3, band.RegParamRevA, dr)
	if err != nil {
		return nil, fmt.Errorf("band %s DR%d: %w", name, dr, err)
	}

	rp, err := New(rate.SpreadFactor, rate.Bandwidth*1000, size.N, 1)
	if err != nil {
		return nil, err
	}
	rp.Name = fmt.Sprintf("%s DR%d", name, dr)
	rp.DataRate = dr
	return rp, nil
}

// SymbolDuration returns 2^SF / BW in seconds.
func (rp *RegionalParameter) SymbolDuration() float64 {
	return math.Pow(2, float64(rp.SpreadingFactor)) / float64(rp.Bandwidth)
}

// Sensitivity is the power a signal must exceed to be demodulated.
func (rp *RegionalParameter) Sensitivity() float64 {
	return -174 - 10*math.Log10(float64(rp.Bandwidth)) - (2.5*float64(rp.SpreadingFactor) - 10)
}

func (rp *RegionalParameter) String() string {
	return rp.Name
}
