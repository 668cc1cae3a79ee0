package events

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/metrics"
)

var eventCounter uint64

func nextID() string {
	n := atomic.AddUint64(&eventCounter, 1)
	return time.Now().Format("20060102150405") + "-" + strconv.FormatUint(n, 10)
}

type subscriber struct {
	ch     chan interface{}
	filter string
}

type EventBroker struct {
	store       *EventStore
	subscribers map[string][]*subscriber
	mu          sync.RWMutex
}

// NewEventBroker retains maxHistory events per topic.
func NewEventBroker(maxHistory int) *EventBroker {
	return NewEventBrokerWithHistory(maxHistory, maxHistory)
}

// NewEventBrokerWithHistory retains perDevice events on device and system
// topics and perGateway events on gateway topics.
func NewEventBrokerWithHistory(perDevice, perGateway int) *EventBroker {
	return &EventBroker{
		store:       NewEventStore(perDevice, perGateway),
		subscribers: make(map[string][]*subscriber),
	}
}

func (b *EventBroker) Subscribe(topic string) (ch <-chan interface{}, history []interface{}, unsubscribe func()) {
	sub := &subscriber{
		ch:     make(chan interface{}, 256),
		filter: topic,
	}

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	b.mu.Unlock()
	metrics.EventSubscriptions.Inc()

	history = b.store.GetHistory(topic)

	unsubscribe = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[topic]
		for i, s := range subs {
			if s == sub {
				b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				metrics.EventSubscriptions.Dec()
				break
			}
		}
	}

	return sub.ch, history, unsubscribe
}

func (b *EventBroker) publish(topic string, event interface{}) {
	b.store.Store(topic, event)

	// sends happen under the read lock so that unsubscribe cannot close a channel mid-send
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers[topic] {
		select {
		case sub.ch <- event:
		default:
			slog.Warn("event subscriber buffer full, dropping event", "topic", topic)
		}
	}
}

func (b *EventBroker) PublishDeviceEvent(devEUI string, event DeviceEvent) {
	if event.ID == "" {
		event.ID = nextID()
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	b.publish(DeviceTopic(devEUI), event)
	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	if event.Type == EventError {
		b.publish(ErrorsTopic, event)
	}
}

func (b *EventBroker) PublishGatewayEvent(gwMAC string, event GatewayEvent) {
	if event.ID == "" {
		event.ID = nextID()
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	b.publish(GatewayTopic(gwMAC), event)
	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	if event.Type == GwEventError {
		b.publish(ErrorsTopic, event)
	}
}

func (b *EventBroker) PublishSystemEvent(event SystemEvent) {
	if event.ID == "" {
		event.ID = nextID()
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	b.publish(SystemTopic, event)
	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	if event.IsError {
		b.publish(ErrorsTopic, event)
	}
}

func (b *EventBroker) RemoveDevice(devEUI string) {
	b.removeTopic(DeviceTopic(devEUI))
}

func (b *EventBroker) RemoveGateway(gwMAC string) {
	b.removeTopic(GatewayTopic(gwMAC))
}

// Reset drops all history and closes every subscription.
func (b *EventBroker) Reset() {
	b.mu.Lock()
	topics := make([]string, 0, len(b.subscribers))
	for topic := range b.subscribers {
		topics = append(topics, topic)
	}
	b.mu.Unlock()
	for _, topic := range topics {
		b.removeTopic(topic)
	}
	b.store.Clear()
}

func (b *EventBroker) removeTopic(topic string) {
	b.store.Remove(topic)
	b.mu.Lock()
	if subs, ok := b.subscribers[topic]; ok {
		for _, sub := range subs {
			close(sub.ch)
			metrics.EventSubscriptions.Dec()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}
