package face

import "time"

// Side identifies an eye.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// BlinkSignal is the lid displacement added to the resting apertures.
type BlinkSignal struct {
	Upper float64
	Lower float64
}

type blinkEye struct {
	next   time.Time
	start  time.Time
	active bool
}

// Blink runs one blink timer per eye. The right eye always fires
// BlinkEyeOffset after the left one.
type Blink struct {
	rng     Rand
	eyes    [2]blinkEye
	onBlink func(Side)
}

// NewBlink returns a controller with nothing scheduled; call ScheduleNext.
func NewBlink(rng Rand) *Blink {
	if rng == nil {
		rng = newRand()
	}
	return &Blink{rng: rng}
}

// OnBlink registers a callback fired when an eye starts a blink.
func (b *Blink) OnBlink(fn func(Side)) { b.onBlink = fn }

// ScheduleNext arms both eyes for a future blink.
func (b *Blink) ScheduleNext(now time.Time) {
	next := now.Add(randDuration(b.rng, BlinkIntervalMin, BlinkIntervalMax))
	b.eyes[Left].next = next
	b.eyes[Right].next = next.Add(BlinkEyeOffset)
}

// Reset cancels running blinks and schedules fresh ones.
func (b *Blink) Reset(now time.Time) {
	b.eyes[Left].active = false
	b.eyes[Right].active = false
	b.ScheduleNext(now)
}

// NextTrigger is the scheduled start of the next blink for side.
func (b *Blink) NextTrigger(side Side) time.Time { return b.eyes[side].next }

// Active reports whether side is mid-blink.
func (b *Blink) Active(side Side) bool { return b.eyes[side].active }

// Advance arms due eyes and returns each eye's blink signal at now.
// Completion of the left blink reschedules both eyes; the right eye only
// ever clears its own flag.
func (b *Blink) Advance(now time.Time) (left, right BlinkSignal) {
	for _, side := range []Side{Left, Right} {
		e := &b.eyes[side]
		if !e.active && !now.Before(e.next) {
			e.active = true
			e.start = now
			if b.onBlink != nil {
				b.onBlink(side)
			}
		}
	}

	left = b.signal(Left, now)
	right = b.signal(Right, now)

	if l := &b.eyes[Left]; l.active && now.Sub(l.start) >= BlinkDuration {
		l.active = false
		b.ScheduleNext(now)
	}
	if r := &b.eyes[Right]; r.active && now.Sub(r.start) >= BlinkDuration {
		r.active = false
	}
	return left, right
}

func (b *Blink) signal(side Side, now time.Time) BlinkSignal {
	e := b.eyes[side]
	if !e.active {
		return BlinkSignal{}
	}
	u := Triangle(now.Sub(e.start), BlinkDuration)
	return BlinkSignal{Upper: u, Lower: u * LowerLidRatio}
}

// Triangle rises linearly from 0 to 1 over the first half of dur and falls
// back to 0 over the second half. Outside [0, dur] it is 0.
func Triangle(elapsed, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}
	ph := clamp01(float64(elapsed) / float64(dur))
	if ph < 0.5 {
		return ph * 2
	}
	return 1 - (ph-0.5)*2
}
