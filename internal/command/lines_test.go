package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want Message
		ok   bool
	}{
		{"robot/emotion happy", Message{TopicEmotion, "happy"}, true},
		{"emotion   sad", Message{TopicEmotion, "sad"}, true},
		{"\tstate\tspeaking ", Message{TopicState, "speaking"}, true},
		{"leds", Message{TopicLEDs, ""}, true},
		{"", Message{}, false},
		{"# comment", Message{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestReadLines(t *testing.T) {
	input := "emotion happy\n\n# ignored\nstate speaking\nrobot/arm up\n"
	var got []Message
	h := HandlerFunc(func(m Message) error {
		got = append(got, m)
		_, err := Parse(m)
		return err
	})

	require.NoError(t, ReadLines(context.Background(), strings.NewReader(input), h))
	assert.Equal(t, []Message{
		{TopicEmotion, "happy"},
		{TopicState, "speaking"},
		{"robot/arm", "up"},
	}, got)
}

func TestReadLines_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	h := HandlerFunc(func(Message) error { calls++; return nil })
	require.NoError(t, ReadLines(ctx, strings.NewReader("emotion happy\n"), h))
	assert.Equal(t, 0, calls)
}
