package command

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvenmobile/sparky/internal/bus"
	"github.com/stvenmobile/sparky/internal/clock"
	"github.com/stvenmobile/sparky/internal/face"
	"github.com/stvenmobile/sparky/internal/surface"
)

func newFace(t *testing.T) *face.Face {
	t.Helper()
	clk := clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	f := face.New(face.DefaultLayout(), surface.NewRecorder(),
		face.WithClock(clk), face.WithRand(rand.New(rand.NewSource(3))))
	f.Init()
	return f
}

// queue applies submitted setters when flushed, like the animation loop.
type queue struct {
	mu   sync.Mutex
	fns  []func(*face.Face)
	full bool
}

func (q *queue) Submit(fn func(*face.Face)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.fns = append(q.fns, fn)
	return true
}

func (q *queue) flush(f *face.Face) {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn(f)
	}
	f.Update(0)
}

type counts struct {
	mu sync.Mutex
	m  map[string]int
}

func (c *counts) Command(topic string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]int{}
	}
	key := topic + ":ok"
	if !ok {
		key = topic + ":rejected"
	}
	c.m[key]++
}

func (c *counts) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m[key]
}

func TestParse_AppliesToFace(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		mood     face.Mood
		sleeping bool
		speaking bool
		events   []bus.EventType
	}{
		{"happy", Message{TopicEmotion, "happy"}, face.Smile, false, false,
			[]bus.EventType{bus.EventTypeMoodChanged, bus.EventTypeSleepChanged}},
		{"sad", Message{TopicEmotion, "sad"}, face.Frown, false, false,
			[]bus.EventType{bus.EventTypeMoodChanged}},
		{"confused", Message{TopicEmotion, "Confused"}, face.Puzzled, false, false,
			[]bus.EventType{bus.EventTypeMoodChanged}},
		{"raw mood name", Message{TopicEmotion, " oooh "}, face.Oooh, false, false,
			[]bus.EventType{bus.EventTypeMoodChanged}},
		{"surprised", Message{TopicEmotion, "surprised"}, face.Oooh, false, false,
			[]bus.EventType{bus.EventTypeMoodChanged}},
		{"sleep", Message{TopicEmotion, "sleep"}, face.Neutral, true, false,
			[]bus.EventType{bus.EventTypeSleepChanged, bus.EventTypeLEDState}},
		{"speaking", Message{TopicState, "speaking"}, face.Neutral, false, true,
			[]bus.EventType{bus.EventTypeSpeakingChanged}},
		{"idle state", Message{TopicState, "idle"}, face.Neutral, false, false,
			[]bus.EventType{bus.EventTypeSpeakingChanged}},
		{"leds", Message{TopicLEDs, "think"}, face.Neutral, false, false,
			[]bus.EventType{bus.EventTypeLEDState}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.msg)
			require.NoError(t, err)

			f := newFace(t)
			if cmd.Apply != nil {
				cmd.Apply(f)
			}
			f.Update(0)
			assert.Equal(t, tt.mood, f.Mood())
			assert.Equal(t, tt.sleeping, f.Sleeping())
			assert.Equal(t, tt.speaking, f.Speaking())

			var types []bus.EventType
			for _, e := range cmd.Events {
				types = append(types, e.Type)
			}
			assert.Equal(t, tt.events, types)
		})
	}
}

func TestParse_LEDsAreBusOnly(t *testing.T) {
	cmd, err := Parse(Message{TopicLEDs, "listen"})
	require.NoError(t, err)
	assert.Nil(t, cmd.Apply)
	assert.Equal(t, "listen", cmd.Events[0].Data["state"])
}

func TestParse_WakeAfterSleep(t *testing.T) {
	f := newFace(t)
	sleep, err := Parse(Message{TopicEmotion, "sleep"})
	require.NoError(t, err)
	wake, err := Parse(Message{TopicEmotion, "wake"})
	require.NoError(t, err)

	sleep.Apply(f)
	f.Update(0)
	require.True(t, f.Sleeping())

	wake.Apply(f)
	f.Update(0)
	assert.False(t, f.Sleeping())
	assert.Equal(t, LEDIdle, wake.Events[1].Data["state"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		msg  Message
		want error
	}{
		{Message{"robot/arm", "up"}, ErrUnknownTopic},
		{Message{TopicEmotion, "furious"}, ErrUnknownEmotion},
		{Message{TopicEmotion, ""}, ErrUnknownEmotion},
		{Message{TopicLEDs, "  "}, ErrEmptyPayload},
	}
	for _, tt := range tests {
		t.Run(tt.msg.Topic+"/"+tt.msg.Payload, func(t *testing.T) {
			_, err := Parse(tt.msg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDispatcher_Handle(t *testing.T) {
	b := bus.NewEventBus()
	events := make(chan bus.Event, 8)
	b.SubscribeMultiple([]bus.EventType{bus.EventTypeMoodChanged, bus.EventTypeCommandRejected},
		func(e bus.Event) { events <- e })

	q := &queue{}
	c := &counts{}
	d := NewDispatcher(q, b, c, zerolog.Nop())

	require.NoError(t, d.Handle(Message{TopicEmotion, "sad"}))
	f := newFace(t)
	q.flush(f)
	assert.Equal(t, face.Frown, f.Mood())

	err := d.Handle(Message{"robot/unknown", "x"})
	assert.ErrorIs(t, err, ErrUnknownTopic)

	got := map[bus.EventType]bus.Event{}
	for range 2 {
		select {
		case e := <-events:
			got[e.Type] = e
		case <-time.After(2 * time.Second):
			t.Fatal("missing bus event")
		}
	}
	assert.Equal(t, "frown", got[bus.EventTypeMoodChanged].Data["mood"])
	assert.Equal(t, "robot/unknown", got[bus.EventTypeCommandRejected].Data["topic"])

	assert.Equal(t, 1, c.get(TopicEmotion+":ok"))
	assert.Equal(t, 1, c.get("unknown:rejected"))
}

func TestDispatcher_QueueFull(t *testing.T) {
	q := &queue{full: true}
	c := &counts{}
	d := NewDispatcher(q, nil, c, zerolog.Nop())

	err := d.Handle(Message{TopicState, "speaking"})
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Equal(t, 1, c.get(TopicState+":rejected"))

	// bus-only commands never touch the queue
	assert.NoError(t, d.Handle(Message{TopicLEDs, "speak"}))
}

func TestHandlerFunc(t *testing.T) {
	var got Message
	h := HandlerFunc(func(m Message) error { got = m; return nil })
	require.NoError(t, h.Handle(Message{TopicState, "speaking"}))
	assert.Equal(t, TopicState, got.Topic)
}
