// Package tiny presents frames on displays driven by tinygo.org/x/drivers.
package tiny

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"

	"github.com/scheerer/eyeballs/internal/render"
)

// BufferDisplayer is implemented by SPI panels (gc9a01, st7789, ili9341)
// that take a whole window of pixels in one transfer.
type BufferDisplayer interface {
	FillRectangleWithBuffer(x, y, width, height int16, buffer []color.RGBA) error
}

// Surface scales and rotates while it streams, so no device sized frame is
// ever held in memory. Buffered displays get one band of Scale rows per
// transfer.
type Surface struct {
	*render.Compositor
	display drivers.Displayer
	band    []color.RGBA
}

var _ render.Surface = (*Surface)(nil)

func New(scene *render.Scene, opts render.Options, display drivers.Displayer) (*Surface, error) {
	c, err := render.NewCompositor(scene, opts)
	if err != nil {
		return nil, err
	}
	return &Surface{Compositor: c, display: display}, nil
}

// Present writes the frame clipped to the display size.
func (s *Surface) Present() error {
	frame := s.Compose()
	opts := s.Options()
	k := max(opts.Scale, 1)

	dw, dh := s.display.Size()
	b := s.Bounds()
	w := min(b.Dx(), int(dw))
	h := min(b.Dy(), int(dh))
	if w <= 0 || h <= 0 {
		return nil
	}
	pixel := devicePixel(frame, k, opts.Rotation == 180)

	if bd, ok := s.display.(BufferDisplayer); ok {
		if cap(s.band) < w*k {
			s.band = make([]color.RGBA, w*k)
		}
		for y0 := 0; y0 < h; y0 += k {
			rows := min(k, h-y0)
			band := s.band[:w*rows]
			for dy := 0; dy < rows; dy++ {
				for x := 0; x < w; x++ {
					band[dy*w+x] = pixel(x, y0+dy)
				}
			}
			if err := bd.FillRectangleWithBuffer(0, int16(y0), int16(w), int16(rows), band); err != nil {
				return err
			}
		}
		return nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.display.SetPixel(int16(x), int16(y), pixel(x, y))
		}
	}
	return s.display.Display()
}

// devicePixel maps a device coordinate back to the logical frame.
func devicePixel(frame *image.RGBA, k int, flip bool) func(x, y int) color.RGBA {
	lw, lh := frame.Bounds().Dx(), frame.Bounds().Dy()
	return func(x, y int) color.RGBA {
		lx, ly := x/k, y/k
		if flip {
			lx, ly = lw-1-lx, lh-1-ly
		}
		return frame.RGBAAt(lx, ly)
	}
}

func (s *Surface) Close() error {
	return nil
}
