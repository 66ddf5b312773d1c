// Package face animates a two-eye, one-mouth face on a small pixel surface.
//
// The package holds the gaze, blink and mouth state machines together with
// differential eyelid and pupil renderers. Nothing here blocks or spawns
// goroutines; a single owner calls Face.Update at a steady cadence and
// serialises the mood/speech setters with it.
package face

import (
	"math/rand"
	"time"

	"github.com/stvenmobile/sparky/internal/surface"
)

// Tunables.
const (
	FramesPerSecond = 40
	MaxFrameDT      = 0.1 // seconds; larger steps are clamped

	BaseUpperLid  = 0.48 // resting lid apertures, giving an oval eye
	BaseLowerLid  = 0.38
	LowerLidRatio = 0.30 // lower lid follows the upper lid at this ratio
	LidOverlap    = 1    // px painted back into the old band to hide seams
	PupilPad      = 2    // px margin around the pupil redraw box
	RimClearance  = 4    // px kept between pupil and sclera rim

	BlinkIntervalMin = 3000 * time.Millisecond
	BlinkIntervalMax = 8000 * time.Millisecond
	BlinkDuration    = 240 * time.Millisecond
	BlinkEyeOffset   = 30 * time.Millisecond

	MicroDriftAmp     = 0.7  // px
	MicroDriftHz      = 0.7  // Hz
	MicroSaccadeRate  = 0.15 // probability per second
	MicroSaccadeStep  = 2    // px
	FixateMin         = 350 * time.Millisecond
	FixateMax         = 1000 * time.Millisecond
	SaccadeMin        = 60 * time.Millisecond
	SaccadeMax        = 120 * time.Millisecond
	PursuitMin        = 1500 * time.Millisecond
	PursuitMax        = 3000 * time.Millisecond
	PursuitSpeed      = 10.0 // px/s
	PursuitChancePct  = 35
	VerticalOffsetMin = -8
	VerticalOffsetMax = 8

	TalkSwapInterval = 120 * time.Millisecond
	TalkSwapJitter   = 40 * time.Millisecond
)

// Layout is the static geometry of the face. It is read once by Init.
type Layout struct {
	LeftX        int `mapstructure:"left_x"`
	RightX       int `mapstructure:"right_x"`
	CenterY      int `mapstructure:"center_y"` // used only when LidTopMargin is 0
	ScleraRadius int `mapstructure:"sclera_radius"`
	PupilRadius  int `mapstructure:"pupil_radius"`
	MaxOffset    int `mapstructure:"max_offset"`

	// LidTopMargin is the distance from the top of the surface to the edge of
	// the resting upper lid.
	LidTopMargin int `mapstructure:"lid_top_margin"`
	EyeNudgeDown int `mapstructure:"eye_nudge_down"`

	// MouthWidthFactor scales the distance between eye centres.
	MouthWidthFactor    float64 `mapstructure:"mouth_width_factor"`
	MouthBaselineOffset int     `mapstructure:"mouth_baseline_offset"` // below the eye row
}

// DefaultLayout is tuned for a 320×240 landscape panel.
func DefaultLayout() Layout {
	return Layout{
		LeftX:               83,
		RightX:              237,
		CenterY:             120,
		ScleraRadius:        26,
		PupilRadius:         11,
		MaxOffset:           26,
		LidTopMargin:        45,
		EyeNudgeDown:        15,
		MouthWidthFactor:    0.8,
		MouthBaselineOffset: 95,
	}
}

// Palette holds the colours used by the renderers.
type Palette struct {
	Background surface.Color
	Sclera     surface.Color
	Rim        surface.Color
	Pupil      surface.Color
	Lip        surface.Color
}

// DefaultPalette is white eyes on black with a grey rim.
func DefaultPalette() Palette {
	return Palette{
		Background: surface.Black,
		Sclera:     surface.White,
		Rim:        surface.DarkGrey,
		Pupil:      surface.Black,
		Lip:        surface.White,
	}
}

// Rand is the random source used by the state machines. *math/rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

func newRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// randRange returns an integer uniformly in [lo, hi].
func randRange(rng Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// randDuration returns a millisecond-granular duration in [lo, hi].
func randDuration(rng Rand, lo, hi time.Duration) time.Duration {
	ms := randRange(rng, int(lo/time.Millisecond), int(hi/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}
