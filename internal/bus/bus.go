// Package bus fans face and command events out to in-process listeners.
package bus

import (
	"sync"
	"time"
)

// EventType identifies different event types
type EventType string

// Event types for the face
const (
	// Command link
	EventTypeConnected    EventType = "connection.connected"
	EventTypeDisconnected EventType = "connection.disconnected"

	// Face state, published when a command has been queued
	EventTypeMoodChanged     EventType = "face.mood_changed"
	EventTypeSpeakingChanged EventType = "face.speaking_changed"
	EventTypeSleepChanged    EventType = "face.sleep_changed"

	// LED ring state, consumed by whatever drives the ring
	EventTypeLEDState EventType = "leds.state"

	// Commands that could not be mapped onto the face
	EventTypeCommandRejected EventType = "command.rejected"
)

// Event represents a bus event. Time is stamped on publish when zero.
type Event struct {
	Type EventType
	Time time.Time
	Data map[string]any
}

// Handler is a function that handles events
type Handler func(Event)

type subscription struct {
	id uint64
	h  Handler
}

// EventBus is a pub/sub bus keyed by event type, plus catch-all listeners.
type EventBus struct {
	mu     sync.RWMutex
	nextID uint64
	byType map[EventType][]subscription
	all    []subscription
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{byType: make(map[EventType][]subscription)}
}

// Subscribe adds a handler for one event type and returns a function that
// removes it.
func (b *EventBus) Subscribe(eventType EventType, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.byType[eventType] = append(b.byType[eventType], subscription{id, handler})
	return func() { b.remove(eventType, id) }
}

// SubscribeAll adds a handler that sees every event.
func (b *EventBus) SubscribeAll(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id, handler})
	return func() { b.remove("", id) }
}

// SubscribeMultiple adds one handler for several event types.
func (b *EventBus) SubscribeMultiple(eventTypes []EventType, handler Handler) func() {
	cancels := make([]func(), 0, len(eventTypes))
	for _, et := range eventTypes {
		cancels = append(cancels, b.Subscribe(et, handler))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// remove drops subscription id; an empty type means the catch-all list.
func (b *EventBus) remove(eventType EventType, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.all
	if eventType != "" {
		list = b.byType[eventType]
	}
	kept := list[:0]
	for _, s := range list {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	if eventType == "" {
		b.all = kept
	} else {
		b.byType[eventType] = kept
	}
}

func (b *EventBus) handlers(t EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, 0, len(b.byType[t])+len(b.all))
	for _, s := range b.byType[t] {
		hs = append(hs, s.h)
	}
	for _, s := range b.all {
		hs = append(hs, s.h)
	}
	return hs
}

func stamp(e Event) Event {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	return e
}

// Publish hands the event to every handler on its own goroutine.
func (b *EventBus) Publish(event Event) {
	event = stamp(event)
	for _, h := range b.handlers(event.Type) {
		go h(event)
	}
}

// PublishSync runs the handlers in subscription order on the caller's
// goroutine.
func (b *EventBus) PublishSync(event Event) {
	event = stamp(event)
	for _, h := range b.handlers(event.Type) {
		h(event)
	}
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType = make(map[EventType][]subscription)
	b.all = nil
}
