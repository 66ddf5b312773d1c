// Package command turns robot messages into face setters.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stvenmobile/sparky/internal/bus"
	"github.com/stvenmobile/sparky/internal/face"
)

// Topics understood by the face.
const (
	TopicEmotion = "robot/emotion"
	TopicState   = "robot/state"
	TopicLEDs    = "robot/leds"
)

// LED ring states published alongside sleep and wake.
const (
	LEDSleep = "sleep"
	LEDIdle  = "idle"
)

var (
	ErrUnknownTopic   = errors.New("unknown topic")
	ErrUnknownEmotion = errors.New("unknown emotion")
	ErrEmptyPayload   = errors.New("empty payload")
	ErrQueueFull      = errors.New("command queue full")
)

// Message is one command as it arrives on the wire.
type Message struct {
	Topic   string `json:"topic"`
	Payload string `json:"payload"`
}

// Command is a parsed message: what to do to the face and what to announce.
type Command struct {
	Topic string

	// Apply runs on the animation goroutine. Nil for bus-only commands.
	Apply func(*face.Face)

	Events []bus.Event
}

var emotionAliases = map[string]face.Mood{
	"happy":     face.Smile,
	"sad":       face.Frown,
	"confused":  face.Puzzled,
	"surprised": face.Oooh,
}

// Parse maps a message onto a command.
func Parse(m Message) (Command, error) {
	topic := strings.TrimSpace(m.Topic)
	payload := strings.ToLower(strings.TrimSpace(m.Payload))
	cmd := Command{Topic: topic}

	switch topic {
	case TopicEmotion:
		return parseEmotion(cmd, payload)

	case TopicState:
		speaking := payload == "speaking"
		cmd.Apply = func(f *face.Face) { f.SetSpeaking(speaking) }
		cmd.Events = []bus.Event{speakingEvent(speaking)}
		return cmd, nil

	case TopicLEDs:
		if payload == "" {
			return cmd, fmt.Errorf("%s: %w", topic, ErrEmptyPayload)
		}
		cmd.Events = []bus.Event{ledEvent(payload)}
		return cmd, nil

	default:
		return cmd, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
}

func parseEmotion(cmd Command, payload string) (Command, error) {
	switch payload {
	case "sleep":
		cmd.Apply = func(f *face.Face) { f.SetSleeping(true) }
		cmd.Events = []bus.Event{sleepEvent(true), ledEvent(LEDSleep)}
		return cmd, nil

	case "wake":
		cmd.Apply = func(f *face.Face) { f.SetSleeping(false) }
		cmd.Events = []bus.Event{sleepEvent(false), ledEvent(LEDIdle)}
		return cmd, nil
	}

	mood, ok := emotionAliases[payload]
	if !ok {
		mood, ok = face.ParseMood(payload)
	}
	if !ok {
		return cmd, fmt.Errorf("%w: %q", ErrUnknownEmotion, payload)
	}

	// happy also opens the eyes
	wake := payload == "happy"
	cmd.Apply = func(f *face.Face) {
		if wake {
			f.SetSleeping(false)
		}
		f.SetMood(mood)
	}
	cmd.Events = []bus.Event{moodEvent(mood)}
	if wake {
		cmd.Events = append(cmd.Events, sleepEvent(false))
	}
	return cmd, nil
}

func moodEvent(m face.Mood) bus.Event {
	return bus.Event{Type: bus.EventTypeMoodChanged, Data: map[string]any{"mood": m.String()}}
}

func sleepEvent(on bool) bus.Event {
	return bus.Event{Type: bus.EventTypeSleepChanged, Data: map[string]any{"sleeping": on}}
}

func speakingEvent(on bool) bus.Event {
	return bus.Event{Type: bus.EventTypeSpeakingChanged, Data: map[string]any{"speaking": on}}
}

func ledEvent(state string) bus.Event {
	return bus.Event{Type: bus.EventTypeLEDState, Data: map[string]any{"state": state}}
}
