package radio

import (
	"math"
	"testing"
	"time"

	"github.com/brocaar/lorawan"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/packets"
)

func TestTimeOnAirSF7(t *testing.T) {
	param, _ := rp.New(7, 125000, 222, 1)
	p := packets.NewLoraWanPacket(lorawan.DevAddr{}, 0, make([]byte, 20), nil)

	// tSym = 128/125000; preamble 12.25 symbols; payload 8 + ceil(176/28) = 15 symbols
	tSym := 128.0 / 125000.0
	want := 15*tSym + 12.25*tSym

	got := TimeOnAirSeconds(p, param)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v s, got %v s", want, got)
	}
	if math.Abs(got-0.027904) > 1e-12 {
		t.Errorf("expected 27.904 ms, got %v s", got)
	}
	if d := TimeOnAir(p, param); d < 27903*time.Microsecond || d > 27904*time.Microsecond {
		t.Errorf("expected ~27.904ms, got %v", d)
	}
}

func TestTimeOnAirImplicitHeaderAndLDRO(t *testing.T) {
	param, _ := rp.New(12, 125000, 51, 1)
	p := packets.NewLoraWanPacket(lorawan.DevAddr{}, 0, make([]byte, 10), nil)

	explicit := TimeOnAirSeconds(p, param)
	p.Header = false
	implicit := TimeOnAirSeconds(p, param)
	if implicit > explicit {
		t.Errorf("implicit header must not be longer: %v > %v", implicit, explicit)
	}

	p.Header = true
	p.LowDataRateOptimization = true
	ldro := TimeOnAirSeconds(p, param)
	if ldro < explicit {
		t.Errorf("low data rate optimization must not be shorter: %v < %v", ldro, explicit)
	}
}

func TestTimeOnAirEmptyPayloadHasMinimumSymbols(t *testing.T) {
	param, _ := rp.New(7, 125000, 222, 1)
	p := packets.NewLoraWanPacket(lorawan.DevAddr{}, 0, nil, nil)

	tSym := param.SymbolDuration()
	// (0 - 28 + 44) / 28 rounds up to 1 payload symbol on top of the 8 fixed ones
	want := 9*tSym + 12.25*tSym
	if got := TimeOnAirSeconds(p, param); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTimeOnAirMonotonic(t *testing.T) {
	for sf := 7; sf <= 12; sf++ {
		var prevByBW float64
		for i, bw := range []int{500000, 250000, 125000} {
			param, _ := rp.New(sf, bw, 255, 1)

			prev := -1.0
			for n := 0; n <= 255; n++ {
				p := packets.NewLoraWanPacket(lorawan.DevAddr{}, 0, make([]byte, n), nil)
				toa := TimeOnAirSeconds(p, param)
				if toa < prev {
					t.Fatalf("SF%d BW%d: time on air decreased from %v to %v at %d bytes", sf, bw, prev, toa, n)
				}
				prev = toa
			}

			// larger bandwidth, shorter time on air
			p := packets.NewLoraWanPacket(lorawan.DevAddr{}, 0, make([]byte, 51), nil)
			toa := TimeOnAirSeconds(p, param)
			if i > 0 && toa < prevByBW {
				t.Fatalf("SF%d: time on air at BW%d (%v) below the wider bandwidth (%v)", sf, bw, toa, prevByBW)
			}
			prevByBW = toa
		}
	}
}
