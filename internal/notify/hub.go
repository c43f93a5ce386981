// Package notify is a small typed publish/subscribe hub used by the session
// store and the resource cache to drive re-rendering.
package notify

import "sync"

type subscription[T any] struct {
	id       uint64
	listener func(T)
}

// Hub delivers every published value to all listeners in subscription order.
// Publish calls are serialized, so listeners observe values in the order they
// were published. A listener must not publish on the hub that invoked it.
type Hub[T any] struct {
	mu       sync.Mutex
	dispatch sync.Mutex
	subs     []subscription[T]
	nextID   uint64
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{}
}

// Subscribe registers listener and returns a function that removes it. The
// returned function is idempotent.
func (h *Hub[T]) Subscribe(listener func(T)) func() {
	if listener == nil {
		return func() {}
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription[T]{id: id, listener: listener})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub[T]) Publish(value T) {
	h.dispatch.Lock()
	defer h.dispatch.Unlock()

	h.mu.Lock()
	subs := make([]subscription[T], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.listener(value)
	}
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subs {
		if sub.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}
