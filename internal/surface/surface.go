// Package surface defines the drawing contract consumed by the face renderer
// and the surfaces that implement it.
package surface

import "image/color"

// Surface is a clipped pixel display. Coordinates are integer pixels.
// Draws between BeginWrite and EndWrite may be buffered until EndWrite.
type Surface interface {
	FillRect(x, y, w, h int, c Color)
	FillCircle(x, y, r int, c Color)
	DrawCircle(x, y, r int, c Color)
	HLine(x, y, w int, c Color)

	// SetClip restricts all following draws to the rectangle until ClearClip.
	SetClip(x, y, w, h int)
	ClearClip()

	BeginWrite()
	EndWrite()
}

// Batch runs fn inside a BeginWrite/EndWrite bracket.
func Batch(s Surface, fn func()) {
	s.BeginWrite()
	defer s.EndWrite()
	fn()
}

// Color is a 16-bit RGB565 value, the native format of small TFT panels.
type Color uint16

// Palette used by the face.
const (
	Black    Color = 0x0000
	White    Color = 0xFFFF
	DarkGrey Color = 0x7BEF
	Cyan     Color = 0x07FF
	Red      Color = 0xF800
)

// RGB packs 8-bit channels into RGB565, dropping the low bits.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGBA8 expands the colour to 8 bits per channel, replicating high bits into
// the low bits so that full-scale channels map to 255.
func (c Color) RGBA8() color.RGBA {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return color.RGBA{
		R: r5<<3 | r5>>2,
		G: g6<<2 | g6>>4,
		B: b5<<3 | b5>>2,
		A: 0xFF,
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.RGBA8().RGBA()
}

// FromRGBA converts an 8-bit colour back to RGB565.
func FromRGBA(c color.RGBA) Color {
	return RGB(c.R, c.G, c.B)
}
