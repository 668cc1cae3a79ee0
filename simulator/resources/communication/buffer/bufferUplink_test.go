package buffer

import (
	"testing"

	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/communication/radio"
)

func tx(id byte) radio.Transmission {
	return radio.Transmission{Sender: lorawan.EUI64{0, 0, 0, 0, 0, 0, 0, id}}
}

func TestBufferPushDrain(t *testing.T) {
	buf := NewBufferUplink(10)
	buf.Push(tx(1))

	got := buf.Drain()
	if len(got) != 1 {
		t.Fatalf("expected 1 transmission, got %d", len(got))
	}
	if got[0].Sender != tx(1).Sender {
		t.Errorf("expected sender %s, got %s", tx(1).Sender, got[0].Sender)
	}
}

func TestBufferBackpressure(t *testing.T) {
	buf := NewBufferUplink(2)
	buf.Push(tx(1))
	buf.Push(tx(2))
	buf.Push(tx(3)) // should drop 1

	got := buf.Drain()
	if len(got) != 2 || got[0].Sender != tx(2).Sender || got[1].Sender != tx(3).Sender {
		t.Errorf("expected [2 3] after overflow, got %v", got)
	}
}

func TestBufferDefaultSize(t *testing.T) {
	buf := NewBufferUplink(0)
	if cap(buf.ch) != DefaultBufferSize {
		t.Errorf("expected capacity %d, got %d", DefaultBufferSize, cap(buf.ch))
	}
}

func TestBufferDrain(t *testing.T) {
	buf := NewBufferUplink(10)
	if len(buf.Drain()) != 0 {
		t.Fatal("expected empty drain")
	}
	buf.Push(tx(1))
	buf.Push(tx(2))
	if buf.Len() != 2 {
		t.Errorf("expected 2 buffered, got %d", buf.Len())
	}

	all := buf.Drain()
	if len(all) != 2 || all[0].Sender != tx(1).Sender {
		t.Errorf("expected [1 2] in order, got %v", all)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty buffer after drain, got %d", buf.Len())
	}
}
