// Package terminal previews the face in a terminal using tcell.
package terminal

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// halfBlock paints the top half of a cell in the foreground colour and the
// bottom half in the background colour, so one cell carries two pixel rows.
const halfBlock = '▀'

// Open creates and initialises the terminal screen.
func Open() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	screen.Clear()
	return screen, nil
}

// Sink mirrors a framebuffer onto a tcell screen, sampling every scale
// pixels horizontally and every scale pixels per half cell vertically.
type Sink struct {
	screen tcell.Screen
	scale  int
}

// NewSink creates a sink for screen. A scale below 1 is treated as 1.
func NewSink(screen tcell.Screen, scale int) *Sink {
	return &Sink{screen: screen, scale: max(1, scale)}
}

// Cells returns the cell range covering the pixel rectangle r.
func (s *Sink) Cells(r image.Rectangle) image.Rectangle {
	rowPx := 2 * s.scale
	return image.Rect(
		r.Min.X/s.scale, r.Min.Y/rowPx,
		ceilDiv(r.Max.X, s.scale), ceilDiv(r.Max.Y, rowPx),
	)
}

// Flush repaints the cells covering rect and shows the screen.
func (s *Sink) Flush(rect image.Rectangle, img *image.RGBA) error {
	cells := s.Cells(rect)
	w, h := s.screen.Size()
	cells = cells.Intersect(image.Rect(0, 0, w, h))

	for cy := cells.Min.Y; cy < cells.Max.Y; cy++ {
		for cx := cells.Min.X; cx < cells.Max.X; cx++ {
			x := cx * s.scale
			top := s.sample(img, x, 2*cy*s.scale)
			bottom := s.sample(img, x, (2*cy+1)*s.scale)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			s.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	s.screen.Show()
	return nil
}

func (s *Sink) sample(img *image.RGBA, x, y int) tcell.Color {
	if !image.Pt(x, y).In(img.Bounds()) {
		return tcell.ColorBlack
	}
	return toColor(img.RGBAAt(x, y))
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
