// Package loop paces the face animation and serialises external commands
// onto the frame goroutine.
package loop

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/stvenmobile/sparky/internal/clock"
	"github.com/stvenmobile/sparky/internal/config"
	"github.com/stvenmobile/sparky/internal/face"
)

// QueueSize bounds the number of pending commands between two frames.
const QueueSize = 64

// FrameObserver records the cost of each frame.
type FrameObserver interface {
	ObserveFrame(d time.Duration)
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used to measure dt.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithFrameObserver reports frame cost to o.
func WithFrameObserver(o FrameObserver) Option {
	return func(r *Runner) { r.obs = o }
}

// Runner is the single owner of a Face. Only the goroutine calling Run or
// Step touches it; everyone else goes through Submit.
type Runner struct {
	face  *face.Face
	fps   int
	maxDT time.Duration
	clock clock.Clock
	log   zerolog.Logger
	obs   FrameObserver

	queue  chan func(*face.Face)
	last   time.Time
	lastDT time.Duration
	frames uint64
}

// New creates a runner for f paced by cfg.
func New(f *face.Face, cfg config.AnimationConfig, opts ...Option) *Runner {
	r := &Runner{
		face:  f,
		fps:   cfg.FPS,
		maxDT: cfg.MaxDT,
		clock: clock.System{},
		log:   zerolog.Nop(),
		queue: make(chan func(*face.Face), QueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fps <= 0 {
		r.fps = config.DefaultConfig().Animation.FPS
	}
	if r.maxDT <= 0 {
		r.maxDT = config.DefaultConfig().Animation.MaxDT
	}
	return r
}

// Submit queues fn to run on the frame goroutine before the next update.
// It never blocks and reports false when the queue is full.
func (r *Runner) Submit(fn func(*face.Face)) bool {
	select {
	case r.queue <- fn:
		return true
	default:
		r.log.Warn().Msg("Command queue full, dropping command")
		return false
	}
}

// Frames returns the number of frames stepped so far.
func (r *Runner) Frames() uint64 { return r.frames }

// LastDT returns the clamped dt handed to the most recent update.
func (r *Runner) LastDT() time.Duration { return r.lastDT }

// Interval is the frame period.
func (r *Runner) Interval() time.Duration { return time.Second / time.Duration(r.fps) }

// Start initialises the face and resets the frame timer.
func (r *Runner) Start() {
	r.face.Init()
	r.last = r.clock.Now()
}

// Step drains pending commands and advances the face by the clamped time
// since the previous step.
func (r *Runner) Step() {
	r.drain()

	now := r.clock.Now()
	dt := now.Sub(r.last)
	r.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > r.maxDT {
		r.log.Debug().Dur("dt", dt).Msg("Frame gap clamped")
		dt = r.maxDT
	}

	r.lastDT = dt

	start := time.Now()
	r.face.Update(dt.Seconds())
	r.frames++
	if r.obs != nil {
		r.obs.ObserveFrame(time.Since(start))
	}
}

func (r *Runner) drain() {
	for {
		select {
		case fn := <-r.queue:
			fn(r.face)
		default:
			return
		}
	}
}

// Run steps the face at the configured rate until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.Start()
	r.log.Info().Int("fps", r.fps).Dur("max_dt", r.maxDT).Msg("Animation loop started")

	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Uint64("frames", r.frames).Msg("Animation loop stopped")
			return nil
		case <-ticker.C:
			r.Step()
		}
	}
}
