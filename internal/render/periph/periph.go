// Package periph presents frames on Linux attached displays through
// periph.io, such as SSD1306 panels on I²C or SPI.
package periph

import (
	"image"

	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/display"

	"github.com/scheerer/eyeballs/internal/render"
)

type Surface struct {
	*render.Compositor
	drawer display.Drawer
	fitted *image.RGBA
}

var _ render.Surface = (*Surface)(nil)

func New(scene *render.Scene, opts render.Options, drawer display.Drawer) (*Surface, error) {
	c, err := render.NewCompositor(scene, opts)
	if err != nil {
		return nil, err
	}
	s := &Surface{Compositor: c, drawer: drawer}
	if db := drawer.Bounds(); db.Size() != c.Bounds().Size() {
		s.fitted = image.NewRGBA(image.Rect(0, 0, db.Dx(), db.Dy()))
	}
	return s, nil
}

// Present scales the frame to the drawer when sizes differ; the driver does
// its own conversion to the panel color model.
func (s *Surface) Present() error {
	frame := s.Render()
	src := image.Image(frame)
	if s.fitted != nil {
		xdraw.ApproxBiLinear.Scale(s.fitted, s.fitted.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
		src = s.fitted
	}
	return s.drawer.Draw(s.drawer.Bounds(), src, image.Point{})
}

// Close halts the device.
func (s *Surface) Close() error {
	return s.drawer.Halt()
}
