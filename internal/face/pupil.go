package face

import (
	"image"

	"github.com/stvenmobile/sparky/internal/surface"
)

// PlanPupil returns the region to redraw when the pupil of e moves from prev
// to next: the union of both padded pupil boxes, limited to the visible rows.
func PlanPupil(e Eye, prev, next image.Point, visible RowSpan) (image.Rectangle, bool) {
	if prev == next || visible.Empty() {
		return image.Rectangle{}, false
	}
	pad := e.PupilRadius + PupilPad
	box := image.Rect(
		min(prev.X, next.X)-pad, min(prev.Y, next.Y)-pad,
		max(prev.X, next.X)+pad+1, max(prev.Y, next.Y)+pad+1,
	)
	box = box.Intersect(image.Rect(box.Min.X, visible.Y0, box.Max.X, visible.Y1))
	return box, !box.Empty()
}

// PupilRenderer moves one eye's pupil with a clipped erase and repaint.
type PupilRenderer struct {
	Palette Palette
}

// Update redraws the pupil of e at next inside the current lid aperture and
// stores next on e. It reports whether anything was drawn.
func (r PupilRenderer) Update(s surface.Surface, e *Eye, next image.Point) bool {
	box, ok := PlanPupil(*e, e.Pupil, next, e.Aperture())
	prev := e.Pupil
	e.Pupil = next
	if !ok {
		return false
	}

	s.SetClip(box.Min.X, box.Min.Y, box.Dx(), box.Dy())
	s.FillCircle(prev.X, prev.Y, e.PupilRadius, r.Palette.Sclera)
	s.FillCircle(next.X, next.Y, e.PupilRadius, r.Palette.Pupil)
	s.ClearClip()
	return true
}
