package face

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/surface"
)

// speechState is one variant of the mouth machine.
type speechState interface {
	frame(mood Mood) MouthFrame
	talking() bool
}

type silentState struct{}

type talkingState struct {
	index    int
	nextSwap time.Time
}

func (silentState) frame(mood Mood) MouthFrame { return MoodFrame(mood) }
func (silentState) talking() bool              { return false }

func (s *talkingState) frame(Mood) MouthFrame { return TalkFrame(s.index) }
func (s *talkingState) talking() bool         { return true }

// Mouth picks the frame to show: the mood frame while silent, a cycling talk
// frame while speaking. Setters are recorded and applied on Advance.
type Mouth struct {
	rng    Rand
	log    zerolog.Logger
	onSwap func(index int)

	mood     Mood
	wantMood Mood
	speak    bool
	state    speechState
	dirty    bool
}

// NewMouth starts silent with the Neutral mood pending a redraw.
func NewMouth(rng Rand) *Mouth {
	if rng == nil {
		rng = newRand()
	}
	return &Mouth{rng: rng, log: zerolog.Nop(), state: silentState{}, dirty: true}
}

// SetLogger attaches a logger for speech transitions.
func (m *Mouth) SetLogger(l zerolog.Logger) { m.log = l }

// OnSwap registers a callback fired whenever a talk frame is selected.
func (m *Mouth) OnSwap(fn func(index int)) { m.onSwap = fn }

// SetMood requests a static shape. Unknown moods are stored as Neutral.
func (m *Mouth) SetMood(mood Mood) {
	if !mood.Valid() {
		mood = Neutral
	}
	m.wantMood = mood
}

// SetSpeaking requests the talking or silent state.
func (m *Mouth) SetSpeaking(on bool) { m.speak = on }

// Mood returns the mood in effect.
func (m *Mouth) Mood() Mood { return m.mood }

// Speaking reports whether the talk bank is cycling.
func (m *Mouth) Speaking() bool { return m.state.talking() }

// TalkIndex is the active talk frame, or -1 while silent.
func (m *Mouth) TalkIndex() int {
	if t, ok := m.state.(*talkingState); ok {
		return t.index
	}
	return -1
}

// Frame is the frame currently selected.
func (m *Mouth) Frame() MouthFrame { return m.state.frame(m.mood) }

// Invalidate forces the next Advance to report a redraw.
func (m *Mouth) Invalidate() { m.dirty = true }

// Advance applies pending setters and the swap timer. It returns the frame to
// show and whether it has to be redrawn.
func (m *Mouth) Advance(now time.Time) (MouthFrame, bool) {
	if m.wantMood != m.mood {
		m.mood = m.wantMood
		if !m.state.talking() {
			m.dirty = true
		}
	}

	switch s := m.state.(type) {
	case silentState:
		if m.speak {
			m.state = m.enterTalking(now, -1)
			m.log.Debug().Msg("Mouth talking")
		}
	case *talkingState:
		switch {
		case !m.speak:
			m.state = silentState{}
			m.dirty = true
			m.log.Debug().Str("mood", m.mood.String()).Msg("Mouth silent")
		case !now.Before(s.nextSwap):
			m.state = m.enterTalking(now, s.index)
		}
	}

	if !m.dirty {
		return m.Frame(), false
	}
	m.dirty = false
	return m.Frame(), true
}

// enterTalking selects a talk frame other than prev and arms the swap timer.
func (m *Mouth) enterTalking(now time.Time, prev int) *talkingState {
	n := TalkFrames()
	idx := m.rng.Intn(n)
	if prev >= 0 && n > 1 {
		idx = m.rng.Intn(n - 1)
		if idx >= prev {
			idx++
		}
	}
	jitter := randDuration(m.rng, -TalkSwapJitter, TalkSwapJitter)
	m.dirty = true
	if m.onSwap != nil {
		m.onSwap(idx)
	}
	return &talkingState{index: idx, nextSwap: now.Add(TalkSwapInterval + jitter)}
}

// MouthGeometry places the mouth band on the surface.
type MouthGeometry struct {
	Left     int
	Width    int
	Baseline int
}

// NewMouthGeometry centres a mouth between the eyes, widthFactor times their
// spacing, baselineOffset below the eye row.
func NewMouthGeometry(leftX, rightX, eyeY int, widthFactor float64, baselineOffset int) MouthGeometry {
	w := int(math.Round(widthFactor * float64(rightX-leftX)))
	w = max(w, 2*AnchorPx+MouthSegments)
	return MouthGeometry{
		Left:     (leftX+rightX)/2 - w/2,
		Width:    w,
		Baseline: eyeY + baselineOffset,
	}
}

// Band is the rectangle cleared before each frame.
func (g MouthGeometry) Band() (x, y, w, h int) {
	reach := MouthMaxDy + MouthClearPad
	return g.Left, g.Baseline - reach, g.Width, 2*reach + 1
}

// MouthRenderer draws frames into the mouth band.
type MouthRenderer struct {
	Palette Palette
}

// Render clears the band, draws the fixed corner anchors and both lips.
func (r MouthRenderer) Render(s surface.Surface, g MouthGeometry, f MouthFrame) {
	bx, by, bw, bh := g.Band()
	s.FillRect(bx, by, bw, bh, r.Palette.Background)

	r.lip(s, g.Left, g.Baseline, AnchorPx)
	r.lip(s, g.Left+g.Width-AnchorPx, g.Baseline, AnchorPx)

	x0 := g.Left + AnchorPx
	span := g.Width - 2*AnchorPx
	for i := range MouthSegments {
		sx := x0 + i*span/MouthSegments
		sw := x0 + (i+1)*span/MouthSegments - sx
		if sw <= 0 {
			continue
		}
		r.lip(s, sx, g.Baseline-clampInt(int(f.Upper[i]), -MouthMaxDy, MouthMaxDy), sw)
		r.lip(s, sx, g.Baseline-clampInt(int(f.Lower[i]), -MouthMaxDy, MouthMaxDy), sw)
	}
}

func (r MouthRenderer) lip(s surface.Surface, x, y, w int) {
	for t := range LipThickness {
		s.HLine(x, y+t, w, r.Palette.Lip)
	}
}
