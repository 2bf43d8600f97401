// Package store provides a reactive value cell: a single mutable value whose
// subscribers are notified, in order, on every write.
package store

import (
	"context"
	"sync"
)

// Cell holds a value of type T and notifies subscribers after every write.
//
// Writes are serialized. Subscribers run synchronously inside the write that
// triggered them, so every subscriber observes every written value in write
// order and no state is skipped. Subscribers must not write to the same cell.
type Cell[T any] struct {
	writeMu sync.Mutex // serializes Set/Update and their notifications

	mu     sync.RWMutex
	value  T
	subs   map[uint64]func(T)
	nextID uint64
}

// NewCell creates a Cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// Update replaces the value with fn(current) and notifies subscribers.
func (c *Cell[T]) Update(fn func(T) T) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.value = fn(c.value)
	v := c.value
	subs := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn and immediately calls it with the current value.
// The returned function removes the subscription; it is safe to call more than once.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	// Hold the write lock so no write can slip between the initial call and registration.
	c.writeMu.Lock()
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	v := c.value
	c.mu.Unlock()
	fn(v)
	c.writeMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// SubscriberCount returns the number of active subscriptions.
func (c *Cell[T]) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Watch adapts a subscription to a channel that is closed when ctx is done.
// Values are never dropped: a write blocks until the value is received or ctx ends.
// The first value delivered is the current value.
func (c *Cell[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T)
	done := make(chan struct{})

	// The initial value is handed to a goroutine, since Subscribe calls fn
	// synchronously and the caller cannot receive until Watch returns. Later
	// writes wait until it has been delivered so ordering holds.
	pending := make(chan T, 1)
	initialSent := make(chan struct{})
	first := true

	unsubscribe := c.Subscribe(func(v T) {
		if first {
			first = false
			pending <- v
			return
		}
		select {
		case <-initialSent:
		case <-done:
			return
		}
		select {
		case <-done:
		case ch <- v:
		}
	})

	go func() {
		v := <-pending
		select {
		case ch <- v:
		case <-ctx.Done():
		}
		close(initialSent)
		<-ctx.Done()
		unsubscribe()
		close(done)
	}()

	go func() {
		<-done
		// Wait for any in-flight notification to finish before closing.
		c.writeMu.Lock()
		close(ch)
		c.writeMu.Unlock()
	}()

	return ch
}

func (c *Cell[T]) snapshotLocked() []func(T) {
	if len(c.subs) == 0 {
		return nil
	}
	// Notify in subscription order.
	out := make([]func(T), 0, len(c.subs))
	for id := uint64(0); id < c.nextID; id++ {
		if fn, ok := c.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
