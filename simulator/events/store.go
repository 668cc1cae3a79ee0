package events

import (
	"strings"
	"sync"
)

// EventStore keeps a bounded history per topic. Gateway topics may retain a
// different number of events than device and system topics.
type EventStore struct {
	buffers      map[string]*RingBuffer[interface{}]
	maxHistory   int
	maxGwHistory int
	mu           sync.RWMutex
}

func NewEventStore(maxHistory, maxGwHistory int) *EventStore {
	return &EventStore{
		buffers:      make(map[string]*RingBuffer[interface{}]),
		maxHistory:   maxHistory,
		maxGwHistory: maxGwHistory,
	}
}

func (s *EventStore) capacity(topic string) int {
	if strings.HasPrefix(topic, GatewayTopic("")) {
		return s.maxGwHistory
	}
	return s.maxHistory
}

func (s *EventStore) Store(topic string, event interface{}) {
	s.mu.Lock()
	buf, ok := s.buffers[topic]
	if !ok {
		buf = NewRingBuffer[interface{}](s.capacity(topic))
		s.buffers[topic] = buf
	}
	s.mu.Unlock()
	buf.Push(event)
}

func (s *EventStore) GetHistory(topic string) []interface{} {
	s.mu.RLock()
	buf, ok := s.buffers[topic]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	return buf.GetAll()
}

func (s *EventStore) Remove(topic string) {
	s.mu.Lock()
	delete(s.buffers, topic)
	s.mu.Unlock()
}

func (s *EventStore) Clear() {
	s.mu.Lock()
	clear(s.buffers)
	s.mu.Unlock()
}
