package terminal

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/command"
	"github.com/stvenmobile/sparky/internal/face"
)

var moodKeys = map[rune]face.Mood{
	'1': face.Neutral,
	'2': face.Smile,
	'3': face.Frown,
	'4': face.Puzzled,
	'5': face.Oooh,
}

// RunInput turns key presses into commands until q or Esc is pressed, the
// screen is finalised, or ctx is done.
//
//	1-5  mood
//	s    toggle speaking
//	z    toggle sleep
func RunInput(ctx context.Context, screen tcell.Screen, h command.Handler, log zerolog.Logger) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	var speaking, sleeping bool
	send := func(topic, payload string) {
		// rejections are logged and counted by the handler
		_ = h.Handle(command.Message{Topic: topic, Payload: payload})
	}

	for {
		ev := screen.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()

		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if ev.Key() != tcell.KeyRune {
				continue
			}

			r := ev.Rune()
			if mood, ok := moodKeys[r]; ok {
				send(command.TopicEmotion, mood.String())
				continue
			}
			switch r {
			case 'q':
				return nil
			case 's':
				speaking = !speaking
				state := "idle"
				if speaking {
					state = "speaking"
				}
				send(command.TopicState, state)
			case 'z':
				sleeping = !sleeping
				emotion := "wake"
				if sleeping {
					emotion = "sleep"
				}
				send(command.TopicEmotion, emotion)
			default:
				log.Debug().Str("key", string(r)).Msg("Unbound key")
			}
		}
	}
}
