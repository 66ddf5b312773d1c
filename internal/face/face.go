package face

import (
	"image"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/clock"
	"github.com/stvenmobile/sparky/internal/surface"
)

// Observer receives animation events. Implementations must not block.
type Observer interface {
	GazeTransition(from, to GazeMode)
	Blink(side Side)
	MouthSwap(index int)
}

// Option configures a Face.
type Option func(*Face)

// WithClock sets the time source. The default is the system clock.
func WithClock(c clock.Clock) Option {
	return func(f *Face) { f.clock = c }
}

// WithRand sets the random source shared by the state machines.
func WithRand(r Rand) Option {
	return func(f *Face) { f.rng = r }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Face) { f.log = l }
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(f *Face) { f.obs = o }
}

// WithPalette overrides the colours.
func WithPalette(p Palette) Option {
	return func(f *Face) { f.palette = p }
}

// Face owns both eyes, the gaze, blink and mouth state, and the renderers.
// It is not safe for concurrent use.
type Face struct {
	layout  Layout
	surf    surface.Surface
	clock   clock.Clock
	rng     Rand
	log     zerolog.Logger
	obs     Observer
	palette Palette

	eyes  [2]Eye
	gaze  *Gaze
	blink *Blink
	mouth *Mouth
	geom  MouthGeometry

	lids   EyelidRenderer
	pupils PupilRenderer
	lips   MouthRenderer

	ready     bool
	wantSleep bool
	asleep    bool
}

// New creates a face that draws on surf. Nothing is drawn until Init.
func New(layout Layout, surf surface.Surface, opts ...Option) *Face {
	f := &Face{
		layout:  layout,
		surf:    surf,
		clock:   clock.System{},
		log:     zerolog.Nop(),
		palette: DefaultPalette(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = newRand()
	}
	f.lids = EyelidRenderer{Palette: f.palette}
	f.pupils = PupilRenderer{Palette: f.palette}
	f.lips = MouthRenderer{Palette: f.palette}

	f.mouth = NewMouth(f.rng)
	f.mouth.SetLogger(f.log)
	f.mouth.OnSwap(func(i int) {
		if f.obs != nil {
			f.obs.MouthSwap(i)
		}
	})
	f.blink = NewBlink(f.rng)
	f.blink.OnBlink(func(s Side) {
		f.log.Debug().Stringer("eye", s).Msg("Blink")
		if f.obs != nil {
			f.obs.Blink(s)
		}
	})
	return f
}

// Init places the eyes, draws them at rest and starts the state machines.
// Calling it again redraws from scratch.
func (f *Face) Init() {
	now := f.clock.Now()
	lay := f.layout
	r := lay.ScleraRadius

	cy := lay.CenterY
	if lay.LidTopMargin != 0 {
		cy = lay.LidTopMargin + int(math.Round(float64(r)*(1-BaseUpperLid))) + lay.EyeNudgeDown
	}
	limit := max(0, min(lay.MaxOffset, r-lay.PupilRadius-RimClearance))

	for i, cx := range []int{lay.LeftX, lay.RightX} {
		c := image.Pt(cx, cy)
		f.eyes[i] = Eye{
			Center:       c,
			ScleraRadius: r,
			PupilRadius:  lay.PupilRadius,
			MaxOffset:    limit,
			Pupil:        c,
		}
	}
	f.geom = NewMouthGeometry(lay.LeftX, lay.RightX, cy, lay.MouthWidthFactor, lay.MouthBaselineOffset)

	surface.Batch(f.surf, func() {
		for i := range f.eyes {
			e := &f.eyes[i]
			f.surf.FillCircle(e.Center.X, e.Center.Y, r, f.palette.Sclera)
			f.surf.DrawCircle(e.Center.X, e.Center.Y, r, f.palette.Rim)
			f.surf.FillCircle(e.Pupil.X, e.Pupil.Y, e.PupilRadius, f.palette.Pupil)
		}
		for i := range f.eyes {
			e := &f.eyes[i]
			f.lids.Update(f.surf, e, BaseUpperLid, BaseLowerLid)
			f.surf.DrawCircle(e.Center.X, e.Center.Y, r, f.palette.Rim)
		}
	})

	f.gaze = NewGaze(f.rng, now)
	f.gaze.SetLogger(f.log)
	f.gaze.OnTransition(func(from, to GazeMode) {
		if f.obs != nil {
			f.obs.GazeTransition(from, to)
		}
	})
	f.blink.Reset(now)
	f.asleep = false
	f.mouth.Invalidate()
	f.ready = true

	f.log.Info().
		Int("eye_y", cy).
		Int("max_offset", limit).
		Int("mouth_baseline", f.geom.Baseline).
		Msg("Face initialised")

	f.Update(0)
}

// Update advances the animation by dt seconds and redraws what changed. It
// returns the eye-row centre y.
func (f *Face) Update(dt float64) int {
	if !f.ready {
		f.Init()
		return f.eyes[Left].Center.Y
	}
	now := f.clock.Now()
	dt = clampFloat(dt, 0, MaxFrameDT)
	f.applySleep(now)

	var upper, lower [2]float64
	var pupils [2]image.Point
	if f.asleep {
		for i := range f.eyes {
			upper[i], lower[i] = 1, 1
			pupils[i] = f.eyes[i].Pupil
		}
	} else {
		limit := min(f.eyes[Left].MaxOffset, f.eyes[Right].MaxOffset)
		off := f.gaze.Advance(now, dt, limit)
		bl, br := f.blink.Advance(now)
		for i, sig := range [2]BlinkSignal{bl, br} {
			upper[i] = BaseUpperLid + sig.Upper
			lower[i] = BaseLowerLid + sig.Lower
			pupils[i] = f.eyes[i].PupilTarget(off)
		}
	}

	frame, redrawMouth := f.mouth.Advance(now)

	f.surf.BeginWrite()
	for i := range f.eyes {
		e := &f.eyes[i]
		changed := f.lids.Update(f.surf, e, upper[i], lower[i])
		if f.pupils.Update(f.surf, e, pupils[i]) {
			changed = true
		}
		if changed {
			f.surf.DrawCircle(e.Center.X, e.Center.Y, e.ScleraRadius, f.palette.Rim)
		}
	}
	if redrawMouth {
		f.lips.Render(f.surf, f.geom, frame)
	}
	f.surf.EndWrite()

	return f.eyes[Left].Center.Y
}

// applySleep moves between awake and asleep. Waking restarts gaze and
// blink timing so the time spent asleep is not replayed.
func (f *Face) applySleep(now time.Time) {
	if f.wantSleep == f.asleep {
		return
	}
	f.asleep = f.wantSleep
	if !f.asleep {
		f.gaze.Restart(now)
		f.blink.Reset(now)
	}
	f.log.Info().Bool("sleeping", f.asleep).Msg("Sleep state changed")
}

// SetMood changes the mouth shape from the next Update.
func (f *Face) SetMood(m Mood) { f.mouth.SetMood(m) }

// SetSpeaking starts or stops the talking animation from the next Update.
func (f *Face) SetSpeaking(on bool) { f.mouth.SetSpeaking(on) }

// SetSleeping closes or reopens both eyes from the next Update.
func (f *Face) SetSleeping(on bool) { f.wantSleep = on }

// Eyes returns copies of the left and right eye as last drawn.
func (f *Face) Eyes() (left, right Eye) { return f.eyes[Left], f.eyes[Right] }

// GazeMode is the active gaze state.
func (f *Face) GazeMode() GazeMode {
	if f.gaze == nil {
		return Fixate
	}
	return f.gaze.Mode()
}

// GazeOffset is the shared gaze offset before per-eye clamping.
func (f *Face) GazeOffset() mgl64.Vec2 {
	if f.gaze == nil {
		return mgl64.Vec2{}
	}
	return f.gaze.Offset()
}

// MouthFrame is the frame currently selected for the mouth.
func (f *Face) MouthFrame() MouthFrame { return f.mouth.Frame() }

// MouthGeometry is where the mouth is drawn. Valid after Init.
func (f *Face) MouthGeometry() MouthGeometry { return f.geom }

// TalkIndex is the active talk frame, or -1 while silent.
func (f *Face) TalkIndex() int { return f.mouth.TalkIndex() }

func (f *Face) Mood() Mood      { return f.mouth.Mood() }
func (f *Face) Speaking() bool  { return f.mouth.Speaking() }
func (f *Face) Sleeping() bool  { return f.asleep }
func (f *Face) EyeCenterY() int { return f.eyes[Left].Center.Y }
