package face

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// GazeMode names the active gaze state.
type GazeMode int

const (
	Fixate GazeMode = iota
	Saccade
	Pursuit
)

func (m GazeMode) String() string {
	switch m {
	case Fixate:
		return "fixate"
	case Saccade:
		return "saccade"
	case Pursuit:
		return "pursuit"
	}
	return "unknown"
}

// clampDisc limits v to the disc of radius r. Points already on the rim are
// left untouched so a clamped value clamps to itself.
func clampDisc(v mgl64.Vec2, r float64) mgl64.Vec2 {
	if r <= 0 {
		return mgl64.Vec2{}
	}
	if l := v.Len(); l > r+1e-9 {
		return v.Mul(r / l)
	}
	return v
}

func lerp(a, b mgl64.Vec2, t float64) mgl64.Vec2 { return a.Add(b.Sub(a).Mul(t)) }

// gazeState is one variant of the gaze machine. advance moves the shared
// position and returns the state for the next frame.
type gazeState interface {
	mode() GazeMode
	advance(g *Gaze, now time.Time, dt, limit float64) gazeState
}

type fixateState struct {
	driftPhase float64
}

type saccadeState struct {
	start, target mgl64.Vec2
}

// pursuitState keeps the drift phase of the fixation it left so the
// micro-drift resumes without a jump.
type pursuitState struct {
	target     mgl64.Vec2
	driftPhase float64
}

func (*fixateState) mode() GazeMode  { return Fixate }
func (*saccadeState) mode() GazeMode { return Saccade }
func (*pursuitState) mode() GazeMode { return Pursuit }

func (s *fixateState) advance(g *Gaze, now time.Time, dt, limit float64) gazeState {
	s.driftPhase += 2 * math.Pi * MicroDriftHz * dt
	drift := MicroDriftAmp * math.Sin(s.driftPhase)

	if g.rng.Float64() < MicroSaccadeRate*dt {
		hop := float64(MicroSaccadeStep)
		if g.rng.Intn(2) == 0 {
			hop = -hop
		}
		g.pos = clampDisc(g.pos.Add(mgl64.Vec2{hop, 0}), limit)
	}

	if now.Sub(g.entered) >= g.dur {
		if g.rng.Intn(100) < PursuitChancePct {
			return g.enterPursuit(now, limit, s.driftPhase)
		}
		return g.enterSaccade(now, limit)
	}
	g.pos = clampDisc(g.pos.Add(mgl64.Vec2{drift * dt * 60, 0}), limit)
	return s
}

func (s *saccadeState) advance(g *Gaze, now time.Time, _, _ float64) gazeState {
	elapsed := now.Sub(g.entered)
	if elapsed >= g.dur {
		g.pos = s.target
		return g.enterFixate(now)
	}
	t := float64(elapsed) / float64(g.dur)
	g.pos = lerp(s.start, s.target, EaseInOutCubic(t))
	return s
}

func (s *pursuitState) advance(g *Gaze, now time.Time, dt, _ float64) gazeState {
	d := s.target.Sub(g.pos)
	dist := d.Len()
	step := PursuitSpeed * dt
	if dist <= step || now.Sub(g.entered) >= g.dur {
		g.pos = s.target
		fix := g.enterFixate(now)
		fix.driftPhase = s.driftPhase
		return fix
	}
	g.pos = g.pos.Add(d.Mul(step / dist))
	return s
}

// Gaze is the conjugate gaze controller shared by both eyes.
type Gaze struct {
	rng     Rand
	log     zerolog.Logger
	onEnter func(from, to GazeMode)

	state   gazeState
	pos     mgl64.Vec2
	entered time.Time
	dur     time.Duration
}

// NewGaze creates a controller fixating at the origin from now.
func NewGaze(rng Rand, now time.Time) *Gaze {
	if rng == nil {
		rng = newRand()
	}
	g := &Gaze{rng: rng, log: zerolog.Nop()}
	g.state = g.enterFixate(now)
	return g
}

// SetLogger attaches a logger for transition events.
func (g *Gaze) SetLogger(l zerolog.Logger) { g.log = l }

// OnTransition registers a callback fired on every state change.
func (g *Gaze) OnTransition(fn func(from, to GazeMode)) { g.onEnter = fn }

// Mode returns the active state.
func (g *Gaze) Mode() GazeMode { return g.state.mode() }

// Offset returns the current gaze offset.
func (g *Gaze) Offset() mgl64.Vec2 { return g.pos }

// Duration is the sampled length of the active state.
func (g *Gaze) Duration() time.Duration { return g.dur }

// Target is the destination of a saccade or pursuit; ok is false while fixating.
func (g *Gaze) Target() (v mgl64.Vec2, ok bool) {
	switch s := g.state.(type) {
	case *saccadeState:
		return s.target, true
	case *pursuitState:
		return s.target, true
	}
	return mgl64.Vec2{}, false
}

// Restart re-enters fixation at the current position, discarding any time
// spent while the controller was not advanced.
func (g *Gaze) Restart(now time.Time) {
	from := g.state.mode()
	g.state = g.enterFixate(now)
	g.notify(from, Fixate)
}

// Advance steps the machine by dt seconds and returns the offset, which never
// leaves the disc of radius maxOffset.
func (g *Gaze) Advance(now time.Time, dt float64, maxOffset int) mgl64.Vec2 {
	limit := float64(max(maxOffset, 0))
	from := g.state
	g.state = from.advance(g, now, dt, limit)
	if g.state != from {
		g.notify(from.mode(), g.state.mode())
	}
	g.pos = clampDisc(g.pos, limit)
	return g.pos
}

func (g *Gaze) notify(from, to GazeMode) {
	g.log.Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Dur("duration", g.dur).
		Msg("Gaze transition")
	if g.onEnter != nil {
		g.onEnter(from, to)
	}
}

func (g *Gaze) enterFixate(now time.Time) *fixateState {
	g.entered = now
	g.dur = randDuration(g.rng, FixateMin, FixateMax)
	return &fixateState{}
}

func (g *Gaze) enterSaccade(now time.Time, limit float64) gazeState {
	g.entered = now
	g.dur = randDuration(g.rng, SaccadeMin, SaccadeMax)
	return &saccadeState{start: g.pos, target: g.sampleTarget(limit)}
}

func (g *Gaze) enterPursuit(now time.Time, limit, phase float64) gazeState {
	g.entered = now
	g.dur = randDuration(g.rng, PursuitMin, PursuitMax)
	return &pursuitState{target: g.sampleTarget(limit), driftPhase: phase}
}

// sampleTarget picks x across the full range and y within the vertical band,
// both inside the limit disc.
func (g *Gaze) sampleTarget(limit float64) mgl64.Vec2 {
	m := int(limit)
	x := randRange(g.rng, -m, m)
	y := clampInt(randRange(g.rng, VerticalOffsetMin, VerticalOffsetMax), -m, m)
	return clampDisc(mgl64.Vec2{float64(x), float64(y)}, limit)
}

// EaseInOutCubic maps t in [0,1] onto an ease-in-out curve.
func EaseInOutCubic(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
