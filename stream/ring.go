package stream

import "sync"

// RingBuffer keeps the last n values added, oldest first. It is safe for
// concurrent use.
type RingBuffer[T any] struct {
	mu    sync.Mutex
	items []T
	next  int
	full  bool
}

// NewRingBuffer holds at least one value.
func NewRingBuffer[T any](n int) *RingBuffer[T] {
	if n < 1 {
		n = 1
	}
	return &RingBuffer[T]{items: make([]T, n)}
}

// Add overwrites the oldest value once the buffer is full.
func (rb *RingBuffer[T]) Add(value T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.items[rb.next] = value
	rb.next++
	if rb.next == len(rb.items) {
		rb.next = 0
		rb.full = true
	}
}

// Get copies out the values, oldest first.
func (rb *RingBuffer[T]) Get() []T {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if !rb.full {
		return append([]T(nil), rb.items[:rb.next]...)
	}
	out := make([]T, 0, len(rb.items))
	out = append(out, rb.items[rb.next:]...)
	return append(out, rb.items[:rb.next]...)
}

func (rb *RingBuffer[T]) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.full {
		return len(rb.items)
	}
	return rb.next
}
