package face

import (
	"fmt"
	"strings"
)

// Mouth geometry shared by the frame tables and the renderer.
const (
	MouthSegments = 21 // interior lip segments, centre at index 10
	MouthMaxDy    = 12 // max lip offset from the baseline in px
	MouthClearPad = 5  // extra rows cleared above and below the lips
	AnchorPx      = 2  // fixed corner pixels that never move
	LipThickness  = 2
)

// MouthFrame holds signed per-segment lip offsets. Positive values sit above
// the baseline.
type MouthFrame struct {
	Upper [MouthSegments]int8
	Lower [MouthSegments]int8
}

// NewMouthFrame builds a frame, rejecting wrong lengths and offsets beyond
// MouthMaxDy.
func NewMouthFrame(upper, lower []int8) (MouthFrame, error) {
	var f MouthFrame
	if len(upper) != MouthSegments || len(lower) != MouthSegments {
		return f, fmt.Errorf("mouth frame needs %d segments per lip, got %d/%d", MouthSegments, len(upper), len(lower))
	}
	for i := range MouthSegments {
		if !inLipRange(upper[i]) {
			return f, fmt.Errorf("upper lip segment %d offset %d out of range", i, upper[i])
		}
		if !inLipRange(lower[i]) {
			return f, fmt.Errorf("lower lip segment %d offset %d out of range", i, lower[i])
		}
		f.Upper[i], f.Lower[i] = upper[i], lower[i]
	}
	return f, nil
}

func inLipRange(v int8) bool {
	return v >= -MouthMaxDy && v <= MouthMaxDy
}

func mustFrame(upper, lower []int8) MouthFrame {
	f, err := NewMouthFrame(upper, lower)
	if err != nil {
		panic(err)
	}
	return f
}

// Mood selects a static mouth shape.
type Mood uint8

const (
	Neutral Mood = iota
	Smile
	Frown
	Puzzled
	Oooh
)

var moodNames = [...]string{"neutral", "smile", "frown", "puzzled", "oooh"}

func (m Mood) String() string {
	if int(m) < len(moodNames) {
		return moodNames[m]
	}
	return moodNames[Neutral]
}

// Valid reports whether m names a known mood.
func (m Mood) Valid() bool { return int(m) < len(moodNames) }

// ParseMood maps a mood name, case-insensitively, onto a Mood.
func ParseMood(s string) (Mood, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range moodNames {
		if n == s {
			return Mood(i), true
		}
	}
	return Neutral, false
}

var moodFrames = [...]MouthFrame{
	Neutral: mustFrame(
		[]int8{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		[]int8{-1, -1, -1, -1, -1, -1, -2, -2, -2, -2, -2, -2, -2, -2, -2, -1, -1, -1, -1, -1, -1},
	),
	Smile: mustFrame(
		[]int8{6, 4, 0, -4, -4, -6, -6, -9, -9, -10, -12, -10, -9, -9, -6, -6, -4, -4, 0, 4, 6},
		[]int8{5, 2, -2, -5, -5, -6, -9, -9, -9, -10, -12, -10, -9, -9, -9, -6, -5, -5, -2, 2, 5},
	),
	Frown: mustFrame(
		[]int8{-4, -2, 2, 4, 5, 6, 9, 9, 11, 12, 12, 12, 11, 9, 9, 6, 5, 4, 2, -2, -4},
		[]int8{-6, -3, 0, 3, 4, 7, 7, 8, 8, 9, 10, 9, 8, 8, 7, 7, 4, 3, 0, -3, -6},
	),
	Puzzled: mustFrame(
		[]int8{0, 0, 1, 2, 2, 1, 3, 1, 2, 0, 1, 1, 0, 2, 1, 3, 1, 2, 1, 0, 0},
		[]int8{0, 0, -1, 0, -2, -1, -2, -1, -1, 0, -1, -1, 0, -2, -1, -2, -1, 0, -1, 0, 0},
	),
	Oooh: mustFrame(
		[]int8{2, 4, 4, 7, 7, 7, 8, 10, 10, 12, 12, 12, 10, 10, 8, 7, 7, 7, 4, 4, 2},
		[]int8{-2, -3, -5, -7, -7, -8, -8, -10, -10, -11, -12, -11, -10, -10, -8, -8, -7, -7, -5, -3, -2},
	),
}

// MoodFrame returns the static frame for m. Unknown moods get Neutral.
func MoodFrame(m Mood) MouthFrame {
	if !m.Valid() {
		m = Neutral
	}
	return moodFrames[m]
}

var talkFrames = []MouthFrame{
	// gentle vowel
	mustFrame(
		[]int8{0, 0, 0, 0, 0, 1, 1, 2, 2, 2, 3, 2, 2, 2, 1, 1, 0, 0, 0, 0, 0},
		[]int8{0, 0, 0, 0, 0, -1, -1, -2, -2, -2, -3, -2, -2, -2, -1, -1, 0, 0, 0, 0, 0},
	),
	// medium open
	mustFrame(
		[]int8{0, 0, 1, 2, 2, 3, 4, 4, 5, 5, 6, 5, 5, 4, 4, 3, 2, 2, 1, 0, 0},
		[]int8{0, 0, -1, -2, -2, -3, -4, -4, -5, -5, -6, -5, -5, -4, -4, -3, -2, -2, -1, 0, 0},
	),
	// wide O
	mustFrame(
		[]int8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0},
		[]int8{0, -1, -2, -3, -4, -5, -6, -7, -8, -9, -10, -9, -8, -7, -6, -5, -4, -3, -2, -1, 0},
	),
	// lower chatter
	mustFrame(
		[]int8{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		[]int8{0, 0, -1, -2, -3, -2, -1, 0, -1, -2, -3, -2, -1, 0, -1, -2, -3, -2, -1, 0, 0},
	),
	// upper chatter
	mustFrame(
		[]int8{0, 0, 1, 2, 3, 2, 1, 0, 1, 2, 3, 2, 1, 0, 1, 2, 3, 2, 1, 0, 0},
		[]int8{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	),
	// consonant snaps
	mustFrame(
		[]int8{0, 4, 0, 5, 0, 6, 0, 5, 0, 4, 0, 4, 0, 5, 0, 6, 0, 5, 0, 4, 0},
		[]int8{0, -2, 0, -3, 0, -4, 0, -5, 0, -4, 0, -4, 0, -5, 0, -6, 0, -5, 0, -4, 0},
	),
	// sweep left to right
	mustFrame(
		[]int8{0, 0, 1, 2, 3, 4, 5, 6, 6, 5, 4, 3, 2, 1, 1, 0, 0, 0, 0, 0, 0},
		[]int8{0, 0, -1, -2, -3, -4, -5, -6, -6, -5, -4, -3, -2, -1, -1, 0, 0, 0, 0, 0, 0},
	),
	// sweep right to left
	mustFrame(
		[]int8{0, 0, 0, 0, 0, 0, 0, 1, 1, 2, 3, 4, 5, 6, 6, 5, 4, 3, 2, 1, 0},
		[]int8{0, 0, 0, 0, 0, 0, 0, -1, -1, -2, -3, -4, -5, -6, -6, -5, -4, -3, -2, -1, 0},
	),
	// breathy
	mustFrame(
		[]int8{0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0},
		[]int8{0, 0, 0, 0, -1, 0, 0, 0, 0, -1, 0, 0, 0, 0, 0, -1, 0, 0, 0, 0, 0},
	),
	// small jaw
	mustFrame(
		[]int8{0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0},
		[]int8{0, 0, 0, 0, 0, -2, 0, 0, 0, 0, -3, 0, 0, 0, 0, -2, 0, 0, 0, 0, 0},
	),
}

// TalkFrames returns the number of frames in the talk bank.
func TalkFrames() int { return len(talkFrames) }

// TalkFrame returns talk frame i, clamped into the bank.
func TalkFrame(i int) MouthFrame {
	return talkFrames[clampInt(i, 0, len(talkFrames)-1)]
}
