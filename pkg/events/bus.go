package events

import (
	"sync"

	"github.com/jscyril/automix/api"
)

// Bus handles event distribution using channels. The mix engine publishes on
// it; collaborators (the animation layer in particular) subscribe.
type Bus struct {
	subscribers map[api.EventType][]chan api.EngineEvent
	mu          sync.RWMutex
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[api.EventType][]chan api.EngineEvent),
	}
}

// Subscribe returns a channel for receiving events of the specified type
func (b *Bus) Subscribe(eventType api.EventType) <-chan api.EngineEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.EngineEvent, 10)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll returns a channel for receiving all event types
func (b *Bus) SubscribeAll() <-chan api.EngineEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan api.EngineEvent, 20)
	for _, eventType := range []api.EventType{
		api.EventMixScheduled,
		api.EventMixCompleted,
		api.EventResampleFallback,
		api.EventError,
	} {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	return ch
}

// Publish broadcasts an event to all subscribers of that event type
func (b *Bus) Publish(event api.EngineEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if subs, ok := b.subscribers[event.Type]; ok {
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
				// Channel full, skip to prevent blocking
			}
		}
	}
}

// Unsubscribe removes a subscriber channel
func (b *Bus) Unsubscribe(ch <-chan api.EngineEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close closes all subscriber channels
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Track closed channels to avoid closing the same channel twice
	closed := make(map[chan api.EngineEvent]bool)

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
	}
	b.subscribers = make(map[api.EventType][]chan api.EngineEvent)
}
