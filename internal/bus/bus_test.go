package bus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventBus_PublishSyncRunsInOrder(t *testing.T) {
	b := NewEventBus()
	var order []string
	b.Subscribe(EventTypeMoodChanged, func(e Event) {
		assert.Equal(t, "smile", e.Data["mood"])
		order = append(order, "first")
	})
	b.Subscribe(EventTypeMoodChanged, func(Event) { order = append(order, "second") })
	b.SubscribeAll(func(Event) { order = append(order, "all") })
	b.Subscribe(EventTypeLEDState, func(Event) { order = append(order, "leds") })

	b.PublishSync(Event{Type: EventTypeMoodChanged, Data: map[string]any{"mood": "smile"}})
	assert.Equal(t, []string{"first", "second", "all"}, order)
}

func TestEventBus_StampsTime(t *testing.T) {
	b := NewEventBus()
	var got Event
	b.SubscribeAll(func(e Event) { got = e })

	b.PublishSync(Event{Type: EventTypeConnected})
	assert.False(t, got.Time.IsZero())

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b.PublishSync(Event{Type: EventTypeConnected, Time: at})
	assert.Equal(t, at, got.Time)
}

func TestEventBus_PublishIsAsync(t *testing.T) {
	b := NewEventBus()
	var wg sync.WaitGroup
	wg.Add(2)
	b.SubscribeMultiple([]EventType{EventTypeSleepChanged, EventTypeLEDState}, func(Event) { wg.Done() })

	b.Publish(Event{Type: EventTypeSleepChanged})
	b.Publish(Event{Type: EventTypeLEDState})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers not called")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	b := NewEventBus()
	calls := map[string]int{}
	cancelOne := b.Subscribe(EventTypeSpeakingChanged, func(Event) { calls["one"]++ })
	b.Subscribe(EventTypeSpeakingChanged, func(Event) { calls["two"]++ })
	cancelAll := b.SubscribeAll(func(Event) { calls["all"]++ })
	cancelMulti := b.SubscribeMultiple([]EventType{EventTypeSpeakingChanged, EventTypeSleepChanged},
		func(Event) { calls["multi"]++ })

	b.PublishSync(Event{Type: EventTypeSpeakingChanged})
	cancelOne()
	cancelAll()
	cancelMulti()
	b.PublishSync(Event{Type: EventTypeSpeakingChanged})
	b.PublishSync(Event{Type: EventTypeSleepChanged})

	assert.Equal(t, map[string]int{"one": 1, "two": 2, "all": 1, "multi": 1}, calls)
}

func TestEventBus_Clear(t *testing.T) {
	b := NewEventBus()
	called := false
	b.Subscribe(EventTypeConnected, func(Event) { called = true })
	b.SubscribeAll(func(Event) { called = true })
	b.Clear()
	b.PublishSync(Event{Type: EventTypeConnected})
	assert.False(t, called)
}
