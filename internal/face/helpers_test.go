package face

import (
	"math/rand"
	"time"
)

// midRand returns the middle of every range asked for.
type midRand struct{}

func (midRand) Intn(n int) int   { return n / 2 }
func (midRand) Float64() float64 { return 0.5 }

// scriptRand replays queued Intn results and falls back to midRand.
type scriptRand struct {
	ints []int
}

func (s *scriptRand) Intn(n int) int {
	if len(s.ints) == 0 {
		return n / 2
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 {
		v += n
	}
	return v
}

func (s *scriptRand) Float64() float64 { return 0.99 }

func seeded(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type eventLog struct {
	gaze   [][2]GazeMode
	blinks []Side
	swaps  []int
}

func (l *eventLog) GazeTransition(from, to GazeMode) { l.gaze = append(l.gaze, [2]GazeMode{from, to}) }
func (l *eventLog) Blink(side Side)                  { l.blinks = append(l.blinks, side) }
func (l *eventLog) MouthSwap(index int)              { l.swaps = append(l.swaps, index) }
