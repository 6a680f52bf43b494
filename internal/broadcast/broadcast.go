// Package broadcast keeps a set of "state changed" callbacks.
package broadcast

import "sync"

// Broadcaster is safe for concurrent use. The zero value is ready.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int]func()
	nextID      int
}

// Subscribe registers fn and returns the func that removes it.
func (b *Broadcaster) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers == nil {
		b.subscribers = map[int]func(){}
	}
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// Notify calls every subscriber outside the lock, so callbacks may read the
// state they were notified about.
func (b *Broadcaster) Notify() {
	b.mu.Lock()
	callbacks := make([]func(), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		callbacks = append(callbacks, fn)
	}
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subscribers)
}
