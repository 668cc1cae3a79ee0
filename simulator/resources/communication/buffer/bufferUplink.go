package buffer

import (
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
)

const DefaultBufferSize = 1000

// BufferUplink holds the transmissions a gateway received until they are
// drained. When full, the oldest transmission is dropped.
type BufferUplink struct {
	ch chan radio.Transmission
}

func NewBufferUplink(size int) *BufferUplink {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BufferUplink{ch: make(chan radio.Transmission, size)}
}

func (bu *BufferUplink) Push(tx radio.Transmission) {
	for {
		select {
		case bu.ch <- tx:
			return
		default:
			// buffer full -- drop oldest, push new
			select {
			case <-bu.ch:
			default:
			}
		}
	}
}

// Drain returns every buffered transmission without blocking.
func (bu *BufferUplink) Drain() []radio.Transmission {
	var out []radio.Transmission
	for {
		select {
		case tx := <-bu.ch:
			out = append(out, tx)
		default:
			return out
		}
	}
}

func (bu *BufferUplink) Len() int {
	return len(bu.ch)
}
