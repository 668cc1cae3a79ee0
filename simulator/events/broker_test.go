package events

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	broker := NewEventBroker(100)
	ch, history, unsub := broker.Subscribe(DeviceTopic("0102030405060708"))
	defer unsub()

	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}

	broker.PublishDeviceEvent("0102030405060708", DeviceEvent{
		DevEUI:  "0102030405060708",
		DevName: "test-mote",
		Type:    EventUp,
	})

	select {
	case event := <-ch:
		de := event.(DeviceEvent)
		if de.Type != EventUp {
			t.Errorf("expected 'up' event, got %s", de.Type)
		}
		if de.ID == "" {
			t.Error("expected auto-generated ID")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBrokerHistory(t *testing.T) {
	broker := NewEventBroker(100)

	broker.PublishDeviceEvent("aabbccdd", DeviceEvent{Type: EventQueued})
	broker.PublishDeviceEvent("aabbccdd", DeviceEvent{Type: EventUp})

	_, history, unsub := broker.Subscribe(DeviceTopic("aabbccdd"))
	defer unsub()

	if len(history) != 2 {
		t.Fatalf("expected 2 history events, got %d", len(history))
	}
}

func TestBrokerErrorsAutoPublish(t *testing.T) {
	broker := NewEventBroker(100)
	errCh, _, unsub := broker.Subscribe(ErrorsTopic)
	defer unsub()

	broker.PublishDeviceEvent("aabbccdd", DeviceEvent{Type: EventError})

	select {
	case <-errCh:
		// good
	case <-time.After(time.Second):
		t.Fatal("error event not published to errors topic")
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	broker := NewEventBroker(100)
	ch, _, unsub := broker.Subscribe(DeviceTopic("aabbccdd"))
	unsub()

	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed after unsubscribe")
	}
}

func TestBrokerReset(t *testing.T) {
	broker := NewEventBroker(100)
	broker.PublishGatewayEvent("0000000000000001", GatewayEvent{Type: GwEventReceived})
	ch, _, _ := broker.Subscribe(GatewayTopic("0000000000000001"))

	broker.Reset()

	if _, ok := <-ch; ok {
		t.Error("expected subscription closed by reset")
	}
	_, history, unsub := broker.Subscribe(GatewayTopic("0000000000000001"))
	defer unsub()
	if len(history) != 0 {
		t.Errorf("expected history cleared, got %d", len(history))
	}
}

func TestBrokerGatewayHistory(t *testing.T) {
	broker := NewEventBrokerWithHistory(5, 2)

	for i := 0; i < 4; i++ {
		broker.PublishGatewayEvent("aa00000000000001", GatewayEvent{Type: GwEventReceived})
		broker.PublishDeviceEvent("0000000000000001", DeviceEvent{Type: EventUp})
	}

	_, gwHistory, unsubGw := broker.Subscribe(GatewayTopic("aa00000000000001"))
	defer unsubGw()
	_, devHistory, unsubDev := broker.Subscribe(DeviceTopic("0000000000000001"))
	defer unsubDev()

	if len(gwHistory) != 2 {
		t.Errorf("gateway history = %d, want 2", len(gwHistory))
	}
	if len(devHistory) != 4 {
		t.Errorf("device history = %d, want 4", len(devHistory))
	}
}
