package surface

import (
	"fmt"
	"image"
)

// OpKind names a recorded surface call.
type OpKind string

const (
	OpFillRect   OpKind = "fill_rect"
	OpFillCircle OpKind = "fill_circle"
	OpDrawCircle OpKind = "draw_circle"
	OpHLine      OpKind = "hline"
	OpSetClip    OpKind = "set_clip"
	OpClearClip  OpKind = "clear_clip"
	OpBegin      OpKind = "begin_write"
	OpEnd        OpKind = "end_write"
)

// IsDraw reports whether the op produces pixels.
func (k OpKind) IsDraw() bool {
	switch k {
	case OpFillRect, OpFillCircle, OpDrawCircle, OpHLine:
		return true
	}
	return false
}

// Op is one recorded call. Unused geometry fields are zero.
type Op struct {
	Kind  OpKind
	X, Y  int
	W, H  int
	R     int
	Color Color

	// Clip is the clip active when the op was issued; Clipped is false when
	// no clip was set.
	Clip    image.Rectangle
	Clipped bool
}

func (o Op) String() string {
	switch o.Kind {
	case OpFillCircle, OpDrawCircle:
		return fmt.Sprintf("%s(%d,%d r=%d #%04x)", o.Kind, o.X, o.Y, o.R, uint16(o.Color))
	case OpHLine:
		return fmt.Sprintf("%s(%d,%d w=%d #%04x)", o.Kind, o.X, o.Y, o.W, uint16(o.Color))
	case OpFillRect, OpSetClip:
		return fmt.Sprintf("%s(%d,%d %dx%d #%04x)", o.Kind, o.X, o.Y, o.W, o.H, uint16(o.Color))
	}
	return string(o.Kind)
}

// Recorder is a Surface that records every call instead of drawing.
type Recorder struct {
	ops     []Op
	clip    image.Rectangle
	clipped bool
	depth   int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) push(op Op) {
	op.Clip, op.Clipped = r.clip, r.clipped
	r.ops = append(r.ops, op)
}

func (r *Recorder) FillRect(x, y, w, h int, c Color) {
	r.push(Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: c})
}

func (r *Recorder) FillCircle(x, y, rad int, c Color) {
	r.push(Op{Kind: OpFillCircle, X: x, Y: y, R: rad, Color: c})
}

func (r *Recorder) DrawCircle(x, y, rad int, c Color) {
	r.push(Op{Kind: OpDrawCircle, X: x, Y: y, R: rad, Color: c})
}

func (r *Recorder) HLine(x, y, w int, c Color) {
	r.push(Op{Kind: OpHLine, X: x, Y: y, W: w, Color: c})
}

func (r *Recorder) SetClip(x, y, w, h int) {
	r.clip, r.clipped = image.Rect(x, y, x+w, y+h), true
	r.push(Op{Kind: OpSetClip, X: x, Y: y, W: w, H: h})
}

func (r *Recorder) ClearClip() {
	r.clip, r.clipped = image.Rectangle{}, false
	r.push(Op{Kind: OpClearClip})
}

func (r *Recorder) BeginWrite() {
	r.depth++
	r.push(Op{Kind: OpBegin})
}

func (r *Recorder) EndWrite() {
	if r.depth > 0 {
		r.depth--
	}
	r.push(Op{Kind: OpEnd})
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Draws returns only the pixel-producing calls.
func (r *Recorder) Draws() []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind.IsDraw() {
			out = append(out, op)
		}
	}
	return out
}

// DrawCalls counts pixel-producing calls.
func (r *Recorder) DrawCalls() int {
	n := 0
	for _, op := range r.ops {
		if op.Kind.IsDraw() {
			n++
		}
	}
	return n
}

// Depth is the current BeginWrite nesting.
func (r *Recorder) Depth() int { return r.depth }

// Reset forgets all recorded calls. Clip and nesting state are kept.
func (r *Recorder) Reset() {
	r.ops = r.ops[:0]
}
