package command

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// ReadLines feeds "topic payload" lines from r to h until EOF or ctx is done.
// Blank lines and lines starting with # are skipped. A topic without a slash
// is taken to be under robot/, so "emotion happy" works.
func ReadLines(ctx context.Context, r io.Reader, h Handler) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		msg, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		_ = h.Handle(msg)
	}
	return scanner.Err()
}

// ParseLine splits one bench line into a message.
func ParseLine(line string) (Message, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Message{}, false
	}
	fields := strings.Fields(line)
	topic := fields[0]
	if !strings.Contains(topic, "/") {
		topic = "robot/" + topic
	}
	return Message{Topic: topic, Payload: strings.Join(fields[1:], " ")}, true
}
