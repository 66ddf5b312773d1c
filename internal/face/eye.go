package face

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Eye is one eye's geometry plus what is currently on screen for it.
type Eye struct {
	Center       image.Point
	ScleraRadius int
	PupilRadius  int
	MaxOffset    int

	Pupil image.Point // pupil centre as drawn
	Upper float64     // upper lid aperture as drawn, 0 open .. 1 closed
	Lower float64
}

// RowSpan is a half-open range of surface rows.
type RowSpan struct {
	Y0, Y1 int
}

// Empty reports whether the span has no rows.
func (r RowSpan) Empty() bool { return r.Y0 >= r.Y1 }

// Len is the number of rows.
func (r RowSpan) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Y1 - r.Y0
}

// top is the first row of the sclera, bottom one past the last.
func (e Eye) top() int    { return e.Center.Y - e.ScleraRadius }
func (e Eye) bottom() int { return e.Center.Y + e.ScleraRadius + 1 }

// Bounds is the bounding box of the sclera circle.
func (e Eye) Bounds() image.Rectangle {
	r := e.ScleraRadius
	return image.Rect(e.Center.X-r, e.Center.Y-r, e.Center.X+r+1, e.Center.Y+r+1)
}

// Aperture is the rows left uncovered by the lids as drawn.
func (e Eye) Aperture() RowSpan {
	return RowSpan{
		Y0: e.top() + lidHeight(e.ScleraRadius, e.Upper),
		Y1: e.bottom() - lowerLidHeight(e.ScleraRadius, e.Lower),
	}
}

// PupilTarget applies a gaze offset to the eye centre, clamped to this eye's
// own limit both per axis and in magnitude.
func (e Eye) PupilTarget(off mgl64.Vec2) image.Point {
	m := e.MaxOffset
	dx := clampInt(int(math.Round(off.X())), -m, m)
	dy := clampInt(int(math.Round(off.Y())), -m, m)
	if dx*dx+dy*dy > m*m {
		f := float64(m) / math.Hypot(float64(dx), float64(dy))
		dx = int(float64(dx) * f)
		dy = int(float64(dy) * f)
	}
	return e.Center.Add(image.Pt(dx, dy))
}

func lidHeight(r int, a float64) int {
	return int(math.Floor(clamp01(a) * float64(r)))
}

// lowerLidHeight also takes the centre row once the lid is fully shut, so two
// closed lids leave no slit.
func lowerLidHeight(r int, a float64) int {
	if clamp01(a) >= 1 {
		return r + 1
	}
	return lidHeight(r, a)
}

func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
