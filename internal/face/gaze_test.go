package face

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.0625},
		{0.5, 0.5},
		{0.75, 0.9375},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, EaseInOutCubic(tt.in), 1e-12, "t=%v", tt.in)
	}
}

func TestGaze_SaccadeSnapsToTarget(t *testing.T) {
	// fixate 350ms, then saccade (roll 99) of 60ms to (5, 3)
	rng := &scriptRand{ints: []int{0, -1, 0, 16, 11}}
	g := NewGaze(rng, epoch)
	require.Equal(t, Fixate, g.Mode())
	require.Equal(t, 350*time.Millisecond, g.Duration())

	now := epoch
	step := 10 * time.Millisecond
	for g.Mode() == Fixate {
		now = now.Add(step)
		g.Advance(now, step.Seconds(), 11)
		require.True(t, now.Sub(epoch) <= 400*time.Millisecond, "fixation never expired")
	}
	require.Equal(t, Saccade, g.Mode())
	target, ok := g.Target()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec2{5, 3}, target)
	assert.Equal(t, 60*time.Millisecond, g.Duration())

	start := now
	for g.Mode() == Saccade {
		now = now.Add(7 * time.Millisecond)
		g.Advance(now, 0.007, 11)
	}
	assert.GreaterOrEqual(t, now.Sub(start), 60*time.Millisecond)
	assert.Equal(t, Fixate, g.Mode())
	assert.Equal(t, target, g.Offset(), "saccade must land exactly on target")
}

func TestGaze_PursuitReachesTarget(t *testing.T) {
	// fixate 350ms, pursuit (roll 0), 1500ms, target (-11, -8) clamped to the disc
	rng := &scriptRand{ints: []int{0, 0, 0, 0, 0}}
	g := NewGaze(rng, epoch)

	now := epoch.Add(350 * time.Millisecond)
	g.Advance(now, 0.01, 11)
	require.Equal(t, Pursuit, g.Mode())
	target, ok := g.Target()
	require.True(t, ok)
	assert.InDelta(t, 11, target.Len(), 1e-9)
	assert.Less(t, target.X(), 0.0)

	prev := g.Offset()
	for i := 0; i < 4 && g.Mode() == Pursuit; i++ {
		now = now.Add(100 * time.Millisecond)
		pos := g.Advance(now, 0.1, 11)
		assert.InDelta(t, PursuitSpeed*0.1, pos.Sub(prev).Len(), 1e-9, "pursuit moves at constant speed")
		prev = pos
	}

	now = now.Add(PursuitMax)
	g.Advance(now, 0.1, 11)
	assert.Equal(t, Fixate, g.Mode())
	assert.Equal(t, target, g.Offset())
}

func TestGaze_PursuitKeepsDriftPhase(t *testing.T) {
	rng := &scriptRand{ints: []int{0, 0, 0, 0, 0}}
	g := NewGaze(rng, epoch)

	g.Advance(epoch.Add(200*time.Millisecond), 0.2, 11)
	g.Advance(epoch.Add(350*time.Millisecond), 0.15, 11)
	require.Equal(t, Pursuit, g.Mode())
	phase := 2 * math.Pi * MicroDriftHz * 0.35
	p, ok := g.state.(*pursuitState)
	require.True(t, ok)
	assert.InDelta(t, phase, p.driftPhase, 1e-9)

	g.Advance(epoch.Add(350*time.Millisecond+PursuitMax), 0.1, 11)
	require.Equal(t, Fixate, g.Mode())
	fix, ok := g.state.(*fixateState)
	require.True(t, ok)
	assert.InDelta(t, phase, fix.driftPhase, 1e-9, "drift resumes where the fixation left off")
}

func TestGaze_SaccadeResetsDriftPhase(t *testing.T) {
	rng := &scriptRand{ints: []int{0, -1, 0, 16, 11}}
	g := NewGaze(rng, epoch)

	g.Advance(epoch.Add(350*time.Millisecond), 0.35, 11)
	require.Equal(t, Saccade, g.Mode())
	g.Advance(epoch.Add(500*time.Millisecond), 0.15, 11)
	require.Equal(t, Fixate, g.Mode())
	fix, ok := g.state.(*fixateState)
	require.True(t, ok)
	assert.Zero(t, fix.driftPhase)
}

func TestClampDisc(t *testing.T) {
	assert.Equal(t, mgl64.Vec2{}, clampDisc(mgl64.Vec2{3, 4}, 0))
	assert.Equal(t, mgl64.Vec2{3, 4}, clampDisc(mgl64.Vec2{3, 4}, 5))
	got := clampDisc(mgl64.Vec2{30, 40}, 5)
	assert.InDelta(t, 3, got.X(), 1e-9)
	assert.InDelta(t, 4, got.Y(), 1e-9)
	assert.Equal(t, got, clampDisc(got, 5), "clamping is idempotent")

	assert.Equal(t, mgl64.Vec2{1, 2}, lerp(mgl64.Vec2{0, 0}, mgl64.Vec2{2, 4}, 0.5))
}

func TestGaze_OffsetStaysInsideLimit(t *testing.T) {
	for _, limit := range []int{0, 3, 11, 26} {
		g := NewGaze(seeded(int64(limit)+7), epoch)
		now := epoch
		for i := 0; i < 20000; i++ {
			dt := time.Duration(5+i%40) * time.Millisecond
			now = now.Add(dt)
			pos := g.Advance(now, dt.Seconds(), limit)
			require.LessOrEqual(t, pos.Len(), float64(limit)+1e-6, "limit %d step %d", limit, i)
			require.False(t, math.IsNaN(pos.X()) || math.IsNaN(pos.Y()))
		}
	}
}

func TestGaze_TargetsRespectVerticalBand(t *testing.T) {
	g := NewGaze(seeded(3), epoch)
	now := epoch
	seen := 0
	for i := 0; i < 50000; i++ {
		now = now.Add(20 * time.Millisecond)
		g.Advance(now, 0.02, 26)
		if target, ok := g.Target(); ok {
			seen++
			assert.LessOrEqual(t, math.Abs(target.Y()), float64(VerticalOffsetMax))
		}
	}
	assert.Positive(t, seen)
}

func TestGaze_TransitionsAreReported(t *testing.T) {
	g := NewGaze(midRand{}, epoch)
	var got [][2]GazeMode
	g.OnTransition(func(from, to GazeMode) { got = append(got, [2]GazeMode{from, to}) })

	now := epoch
	for i := 0; i < 40; i++ {
		now = now.Add(25 * time.Millisecond)
		g.Advance(now, 0.025, 11)
	}
	require.Len(t, got, 2)
	assert.Equal(t, [2]GazeMode{Fixate, Saccade}, got[0])
	assert.Equal(t, [2]GazeMode{Saccade, Fixate}, got[1])

	g.Restart(now)
	assert.Equal(t, Fixate, g.Mode())
	assert.Len(t, got, 3)
}

func TestGazeMode_String(t *testing.T) {
	assert.Equal(t, "fixate", Fixate.String())
	assert.Equal(t, "saccade", Saccade.String())
	assert.Equal(t, "pursuit", Pursuit.String())
	assert.Equal(t, "unknown", GazeMode(9).String())
}
