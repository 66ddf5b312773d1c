package face

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stvenmobile/sparky/internal/surface"
)

func TestPlanPupil_UnionOfPaddedBoxes(t *testing.T) {
	e := testEye()
	open := RowSpan{0, 1000}
	prev, next := e.Center, e.Center.Add(image.Pt(3, -2))

	box, ok := PlanPupil(e, prev, next, open)
	require.True(t, ok)
	pad := e.PupilRadius + PupilPad
	want := image.Rect(prev.X-pad, next.Y-pad, next.X+pad+1, prev.Y+pad+1)
	assert.Equal(t, want, box)

	_, ok = PlanPupil(e, prev, prev, open)
	assert.False(t, ok, "no motion, no redraw")
}

func TestPlanPupil_LimitedToAperture(t *testing.T) {
	e := testEye()
	prev, next := e.Center, e.Center.Add(image.Pt(1, 0))

	box, ok := PlanPupil(e, prev, next, RowSpan{e.Center.Y - 2, e.Center.Y + 3})
	require.True(t, ok)
	assert.Equal(t, e.Center.Y-2, box.Min.Y)
	assert.Equal(t, e.Center.Y+3, box.Max.Y)

	_, ok = PlanPupil(e, prev, next, RowSpan{0, 10})
	assert.False(t, ok, "pupil hidden behind the lid")
}

func TestPupilRenderer_ErasesThenPaints(t *testing.T) {
	pal := DefaultPalette()
	r := PupilRenderer{Palette: pal}
	e := testEye()
	next := e.Center.Add(image.Pt(-4, 1))
	prev := e.Pupil

	rec := surface.NewRecorder()
	require.True(t, r.Update(rec, &e, next))
	assert.Equal(t, next, e.Pupil)

	draws := rec.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, surface.OpFillCircle, draws[0].Kind)
	assert.Equal(t, pal.Sclera, draws[0].Color)
	assert.Equal(t, prev, image.Pt(draws[0].X, draws[0].Y))
	assert.Equal(t, pal.Pupil, draws[1].Color)
	assert.Equal(t, next, image.Pt(draws[1].X, draws[1].Y))
	assert.True(t, draws[0].Clipped)
	assert.True(t, draws[1].Clipped)

	ops := rec.Ops()
	assert.Equal(t, surface.OpClearClip, ops[len(ops)-1].Kind)

	rec.Reset()
	assert.False(t, r.Update(rec, &e, next))
	assert.Zero(t, rec.DrawCalls())
}

func TestEye_PupilTargetClamped(t *testing.T) {
	e := testEye()
	tests := []struct {
		name string
		off  mgl64.Vec2
	}{
		{"inside", mgl64.Vec2{3, 4}},
		{"far right", mgl64.Vec2{40, 0}},
		{"far diagonal", mgl64.Vec2{-30, 30}},
		{"rounding edge", mgl64.Vec2{10.6, 4.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := e.PupilTarget(tt.off).Sub(e.Center)
			assert.LessOrEqual(t, p.X*p.X+p.Y*p.Y, e.MaxOffset*e.MaxOffset)
		})
	}
	assert.Equal(t, e.Center.Add(image.Pt(3, 4)), e.PupilTarget(mgl64.Vec2{3, 4}))
	assert.Equal(t, e.Center.Add(image.Pt(11, 0)), e.PupilTarget(mgl64.Vec2{40, 0}))
}
