package face

import (
	"github.com/stvenmobile/sparky/internal/surface"
)

// LidBand is the rows one lid transition touches. Cover bands are painted
// with the background colour; exposed bands are rebuilt as sclera.
type LidBand struct {
	Rows  RowSpan
	Cover bool
}

// PlanUpperLid returns the band to repaint when the upper lid of e moves from
// prev to next. ok is false when the lid edge lands on the same row.
func PlanUpperLid(e Eye, prev, next float64) (band LidBand, ok bool) {
	oldH := lidHeight(e.ScleraRadius, prev)
	newH := lidHeight(e.ScleraRadius, next)
	top := e.top()
	switch {
	case newH > oldH:
		return LidBand{Rows: RowSpan{top + max(0, oldH-LidOverlap), top + newH}, Cover: true}, true
	case newH < oldH:
		return LidBand{Rows: RowSpan{top + newH, top + oldH}}, true
	}
	return LidBand{}, false
}

// PlanLowerLid is PlanUpperLid mirrored onto the bottom of the sclera.
func PlanLowerLid(e Eye, prev, next float64) (band LidBand, ok bool) {
	oldH := lowerLidHeight(e.ScleraRadius, prev)
	newH := lowerLidHeight(e.ScleraRadius, next)
	bottom := e.bottom()
	switch {
	case newH > oldH:
		return LidBand{Rows: RowSpan{bottom - newH, bottom - max(0, oldH-LidOverlap)}, Cover: true}, true
	case newH < oldH:
		return LidBand{Rows: RowSpan{bottom - oldH, bottom - newH}}, true
	}
	return LidBand{}, false
}

// EyelidRenderer paints lid transitions for one eye at a time.
type EyelidRenderer struct {
	Palette Palette
}

// Update clamps both apertures into [0,1], paints whatever rows changed and
// stores the clamped values on e. It reports whether anything was drawn.
func (r EyelidRenderer) Update(s surface.Surface, e *Eye, upper, lower float64) bool {
	upper, lower = clamp01(upper), clamp01(lower)

	drew := false
	if band, ok := PlanUpperLid(*e, e.Upper, upper); ok {
		r.paint(s, *e, band)
		drew = true
	}
	if band, ok := PlanLowerLid(*e, e.Lower, lower); ok {
		r.paint(s, *e, band)
		drew = true
	}
	e.Upper, e.Lower = upper, lower
	return drew
}

func (r EyelidRenderer) paint(s surface.Surface, e Eye, band LidBand) {
	rows := band.Rows
	if rows.Empty() {
		return
	}
	rad := e.ScleraRadius
	if band.Cover {
		s.FillRect(e.Center.X-rad, rows.Y0, 2*rad+1, rows.Len(), r.Palette.Background)
		return
	}

	for y := rows.Y0; y < rows.Y1; y++ {
		hw := surface.ChordHalfWidth(rad, y-e.Center.Y)
		if hw < 0 {
			continue
		}
		s.HLine(e.Center.X-hw, y, 2*hw+1, r.Palette.Sclera)
	}

	// The pupil sits under the reopening lid and has to come back with it.
	rp := e.PupilRadius
	if e.Pupil.Y+rp < rows.Y0 || e.Pupil.Y-rp >= rows.Y1 {
		return
	}
	s.SetClip(e.Center.X-rad, rows.Y0, 2*rad+1, rows.Len())
	s.FillCircle(e.Pupil.X, e.Pupil.Y, rp, r.Palette.Pupil)
	s.ClearClip()
}
