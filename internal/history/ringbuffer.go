package history

import "sync"

// RingBuffer is a generic, thread-safe, fixed-capacity circular buffer.
// Items are kept oldest to newest; adding to a full buffer overwrites the oldest.
type RingBuffer[T any] struct {
	mu    sync.RWMutex
	items []T
	head  int
	count int
	cap   int
}

// NewRingBuffer creates a new RingBuffer with the given capacity.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{
		items: make([]T, capacity),
		cap:   capacity,
	}
}

// Add inserts an item into the ring buffer, overwriting the oldest if full.
func (r *RingBuffer[T]) Add(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.head] = item
	r.head = (r.head + 1) % r.cap
	if r.count < r.cap {
		r.count++
	}
}

// Len returns the number of items currently in the buffer.
func (r *RingBuffer[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return r.cap
}

// All returns all items in order from oldest to newest.
func (r *RingBuffer[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]T, r.count)
	start := r.startLocked()
	for i := 0; i < r.count; i++ {
		result[i] = r.items[(start+i)%r.cap]
	}
	return result
}

// Last returns the most recently added item.
func (r *RingBuffer[T]) Last() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if r.count == 0 {
		return zero, false
	}
	idx := (r.head - 1 + r.cap) % r.cap
	return r.items[idx], true
}

// DropWhile removes items from the oldest end for as long as pred reports
// true, and returns the number removed.
func (r *RingBuffer[T]) DropWhile(pred func(T) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	start := r.startLocked()
	removed := 0
	for removed < r.count {
		idx := (start + removed) % r.cap
		if !pred(r.items[idx]) {
			break
		}
		r.items[idx] = zero
		removed++
	}
	r.count -= removed
	return removed
}

// Reset replaces the contents with items, keeping only the newest Cap() of them.
func (r *RingBuffer[T]) Reset(items []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(items) > r.cap {
		items = items[len(items)-r.cap:]
	}
	clear(r.items)
	copy(r.items, items)
	r.count = len(items)
	r.head = r.count % r.cap
}

// startLocked returns the index of the oldest item. Caller holds r.mu.
func (r *RingBuffer[T]) startLocked() int {
	return (r.head - r.count + r.cap) % r.cap
}
