package command

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/bus"
	"github.com/stvenmobile/sparky/internal/face"
)

// Submitter runs setters on the goroutine that owns the face.
type Submitter interface {
	Submit(fn func(*face.Face)) bool
}

// Counter records command outcomes.
type Counter interface {
	Command(topic string, ok bool)
}

// Handler consumes messages from a transport.
type Handler interface {
	Handle(m Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Message) error

func (f HandlerFunc) Handle(m Message) error { return f(m) }

// Dispatcher parses messages, queues the setters and announces them on the bus.
type Dispatcher struct {
	sub     Submitter
	bus     *bus.EventBus
	counter Counter
	log     zerolog.Logger
}

// NewDispatcher creates a dispatcher. b and counter may be nil.
func NewDispatcher(sub Submitter, b *bus.EventBus, counter Counter, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sub:     sub,
		bus:     b,
		counter: counter,
		log:     log,
	}
}

// Handle applies one message.
func (d *Dispatcher) Handle(m Message) error {
	cmd, err := Parse(m)
	if err != nil {
		d.reject(m, err)
		return err
	}

	if cmd.Apply != nil && !d.sub.Submit(cmd.Apply) {
		err := fmt.Errorf("%s: %w", cmd.Topic, ErrQueueFull)
		d.reject(m, err)
		return err
	}

	if d.bus != nil {
		for _, e := range cmd.Events {
			d.bus.Publish(e)
		}
	}
	d.count(cmd.Topic, true)
	d.log.Debug().Str("topic", m.Topic).Str("payload", m.Payload).Msg("Command applied")
	return nil
}

func (d *Dispatcher) reject(m Message, err error) {
	d.log.Warn().Err(err).Str("topic", m.Topic).Str("payload", m.Payload).Msg("Command rejected")
	d.count(m.Topic, false)
	if d.bus != nil {
		d.bus.Publish(bus.Event{
			Type: bus.EventTypeCommandRejected,
			Data: map[string]any{
				"topic":   m.Topic,
				"payload": m.Payload,
				"error":   err.Error(),
			},
		})
	}
}

// count keeps metric labels bounded to the known topics.
func (d *Dispatcher) count(topic string, ok bool) {
	if d.counter == nil {
		return
	}
	switch topic {
	case TopicEmotion, TopicState, TopicLEDs:
	default:
		topic = "unknown"
	}
	d.counter.Command(topic, ok)
}
