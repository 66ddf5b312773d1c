package surface

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePanel struct {
	bounds image.Rectangle
	draws  []image.Rectangle
	points []image.Point
}

func (p *fakePanel) String() string          { return "fake-panel" }
func (p *fakePanel) Halt() error             { return nil }
func (p *fakePanel) ColorModel() color.Model { return color.RGBAModel }
func (p *fakePanel) Bounds() image.Rectangle { return p.bounds }

func (p *fakePanel) Draw(r image.Rectangle, _ image.Image, sp image.Point) error {
	p.draws = append(p.draws, r)
	p.points = append(p.points, sp)
	return nil
}

func TestDrawerSinkSendsOnlyDirtyRegion(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, 64, 32)}
	fb := NewFramebuffer(64, 32)
	fb.AddSink(NewDrawerSink(panel))

	Batch(fb, func() {
		fb.FillRect(10, 4, 6, 3, White)
	})

	require.Len(t, panel.draws, 1)
	assert.Equal(t, image.Rect(10, 4, 16, 7), panel.draws[0])
	assert.Equal(t, image.Pt(10, 4), panel.points[0])
}

func TestDrawerSinkClipsToPanel(t *testing.T) {
	panel := &fakePanel{bounds: image.Rect(0, 0, 8, 8)}
	sink := NewDrawerSink(panel)
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	require.NoError(t, sink.Flush(image.Rect(10, 10, 12, 12), img))
	assert.Empty(t, panel.draws)

	require.NoError(t, sink.Flush(image.Rect(6, 6, 12, 12), img))
	assert.Equal(t, []image.Rectangle{image.Rect(6, 6, 8, 8)}, panel.draws)
}
