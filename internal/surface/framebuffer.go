package surface

import (
	"image"
	"math"
)

// Sink receives the dirty region of a framebuffer when a write batch ends.
type Sink interface {
	Flush(rect image.Rectangle, img *image.RGBA) error
}

// Framebuffer is an in-memory Surface. It tracks the union of pixels touched
// since the last flush and hands that rectangle to its sinks at the end of
// the outermost write batch. Draws issued outside a batch flush immediately.
type Framebuffer struct {
	img     *image.RGBA
	clip    image.Rectangle
	dirty   image.Rectangle
	depth   int
	sinks   []Sink
	lastErr error
	onError func(error)
}

// NewFramebuffer allocates a w×h framebuffer cleared to black.
func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	fb.clip = fb.img.Bounds()
	fb.fill(fb.img.Bounds(), Black)
	fb.dirty = image.Rectangle{}
	return fb
}

// AddSink registers a flush target.
func (fb *Framebuffer) AddSink(s Sink) {
	fb.sinks = append(fb.sinks, s)
}

// OnError sets a callback for sink failures.
func (fb *Framebuffer) OnError(fn func(error)) {
	fb.onError = fn
}

// Err returns the last sink error, if any.
func (fb *Framebuffer) Err() error { return fb.lastErr }

// Bounds returns the framebuffer size.
func (fb *Framebuffer) Bounds() image.Rectangle { return fb.img.Bounds() }

// Image exposes the backing image. Callers must not retain it across writes.
func (fb *Framebuffer) Image() *image.RGBA { return fb.img }

// ColorAt reads a pixel back as RGB565.
func (fb *Framebuffer) ColorAt(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(fb.img.Bounds())) {
		return Black
	}
	return FromRGBA(fb.img.RGBAAt(x, y))
}

// Dirty returns the rectangle touched since the last flush.
func (fb *Framebuffer) Dirty() image.Rectangle { return fb.dirty }

func (fb *Framebuffer) fill(r image.Rectangle, c Color) {
	r = r.Intersect(fb.clip)
	if r.Empty() {
		return
	}
	px := c.RGBA8()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := fb.img.PixOffset(r.Min.X, y)
		row := fb.img.Pix[off : off+4*r.Dx()]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = px.R, px.G, px.B, px.A
		}
	}
	fb.dirty = fb.dirty.Union(r)
}

func (fb *Framebuffer) plot(x, y int, c Color) {
	p := image.Point{X: x, Y: y}
	if !p.In(fb.clip) {
		return
	}
	fb.img.SetRGBA(x, y, c.RGBA8())
	fb.dirty = fb.dirty.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})
}

func (fb *Framebuffer) autoflush() {
	if fb.depth == 0 {
		fb.flush()
	}
}

func (fb *Framebuffer) FillRect(x, y, w, h int, c Color) {
	if w <= 0 || h <= 0 {
		return
	}
	fb.fill(image.Rect(x, y, x+w, y+h), c)
	fb.autoflush()
}

func (fb *Framebuffer) HLine(x, y, w int, c Color) {
	fb.FillRect(x, y, w, 1, c)
}

// FillCircle fills one chord per row, using ChordHalfWidth.
func (fb *Framebuffer) FillCircle(cx, cy, r int, c Color) {
	if r < 0 {
		return
	}
	for dy := -r; dy <= r; dy++ {
		half := ChordHalfWidth(r, dy)
		fb.fill(image.Rect(cx-half, cy+dy, cx+half+1, cy+dy+1), c)
	}
	fb.autoflush()
}

// DrawCircle plots a one-pixel outline with the midpoint algorithm.
func (fb *Framebuffer) DrawCircle(cx, cy, r int, c Color) {
	if r < 0 {
		return
	}
	x, y, e := r, 0, 1-r
	for x >= y {
		fb.plot(cx+x, cy+y, c)
		fb.plot(cx+y, cy+x, c)
		fb.plot(cx-y, cy+x, c)
		fb.plot(cx-x, cy+y, c)
		fb.plot(cx-x, cy-y, c)
		fb.plot(cx-y, cy-x, c)
		fb.plot(cx+y, cy-x, c)
		fb.plot(cx+x, cy-y, c)
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
	fb.autoflush()
}

func (fb *Framebuffer) SetClip(x, y, w, h int) {
	fb.clip = image.Rect(x, y, x+w, y+h).Intersect(fb.img.Bounds())
}

func (fb *Framebuffer) ClearClip() {
	fb.clip = fb.img.Bounds()
}

func (fb *Framebuffer) BeginWrite() {
	fb.depth++
}

func (fb *Framebuffer) EndWrite() {
	if fb.depth == 0 {
		return
	}
	fb.depth--
	fb.autoflush()
}

func (fb *Framebuffer) flush() {
	if fb.dirty.Empty() {
		return
	}
	rect := fb.dirty
	fb.dirty = image.Rectangle{}
	for _, s := range fb.sinks {
		if err := s.Flush(rect, fb.img); err != nil {
			fb.lastErr = err
			if fb.onError != nil {
				fb.onError(err)
			}
		}
	}
}

// ChordHalfWidth is the half-width of the row dy away from the centre of a
// circle of radius r: floor(sqrt(r² − dy²)), or -1 outside the circle.
func ChordHalfWidth(r, dy int) int {
	d := r*r - dy*dy
	if d < 0 {
		return -1
	}
	return int(math.Floor(math.Sqrt(float64(d))))
}
