package events

import "sync"

// RingBuffer keeps the last cap items pushed, oldest first.
type RingBuffer[T any] struct {
	items []T
	head  int
	count int
	mu    sync.RWMutex
}

// NewRingBuffer returns a buffer holding at least one item.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{items: make([]T, capacity)}
}

func (rb *RingBuffer[T]) Push(item T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	n := len(rb.items)
	rb.items[(rb.head+rb.count)%n] = item
	if rb.count == n {
		rb.head = (rb.head + 1) % n
	} else {
		rb.count++
	}
}

// GetAll copies the buffered items, oldest first.
func (rb *RingBuffer[T]) GetAll() []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	result := make([]T, rb.count)
	for i := range result {
		result[i] = rb.items[(rb.head+i)%len(rb.items)]
	}
	return result
}

func (rb *RingBuffer[T]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

func (rb *RingBuffer[T]) Cap() int { return len(rb.items) }
