// Package events fans scheduler notifications out to presentation code.
package events

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/autobard/sdk/contracts"
)

// DefaultBuffer is the channel capacity used when a subscriber asks for zero.
const DefaultBuffer = 64

// Bus delivers events to every subscriber without ever blocking the
// publisher. A subscriber whose buffer is full misses the event.
type Bus struct {
	logger contracts.Logger

	mu     sync.RWMutex
	subs   map[int]chan contracts.Event
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus(logger contracts.Logger) *Bus {
	return &Bus{logger: logger, subs: make(map[int]chan contracts.Event)}
}

// Subscribe returns a channel of events and a function that removes the
// subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan contracts.Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan contracts.Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Handle runs fn for every event on its own goroutine until the returned
// cancel function is called. A panicking handler is logged and keeps receiving
// subsequent events.
func (b *Bus) Handle(fn func(contracts.Event)) func() {
	ch, cancel := b.Subscribe(0)
	go func() {
		for ev := range ch {
			b.dispatch(fn, ev)
		}
	}()
	return cancel
}

func (b *Bus) dispatch(fn func(contracts.Event), ev contracts.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("observer failed",
				b.logger.Field().String("event", ev.Kind.String()),
				b.logger.Field().Error("error", fmt.Errorf("panic: %v", r)))
		}
	}()
	fn(ev)
}

// Publish delivers ev to every subscriber that has room for it.
func (b *Bus) Publish(ev contracts.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug("observer buffer full; event dropped",
				b.logger.Field().String("event", ev.Kind.String()))
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
