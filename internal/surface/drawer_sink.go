package surface

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/display"
)

// DrawerSink forwards dirty regions to a periph.io panel driver, so only the
// changed rectangle crosses the display bus.
type DrawerSink struct {
	dev display.Drawer
}

// NewDrawerSink wraps a panel driver.
func NewDrawerSink(dev display.Drawer) *DrawerSink {
	return &DrawerSink{dev: dev}
}

// Flush draws rect of img onto the panel at the same coordinates.
func (d *DrawerSink) Flush(rect image.Rectangle, img *image.RGBA) error {
	rect = rect.Intersect(d.dev.Bounds())
	if rect.Empty() {
		return nil
	}
	if err := d.dev.Draw(rect, img, rect.Min); err != nil {
		return fmt.Errorf("panel %s draw %v: %w", d.dev, rect, err)
	}
	return nil
}
