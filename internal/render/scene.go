// Package render composites layered sprites into frames and pushes them to a
// display backend.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

var (
	ErrUnknownLayer        = errors.New("unknown layer")
	ErrFrameOutOfRange     = errors.New("sprite frame out of range")
	ErrUnsupportedRotation = errors.New("rotation must be 0 or 180")
)

type LayerID int

// Sprite is one positioned layer. Multi-frame sprites are horizontal strips
// of FrameW wide tiles; Frame selects the visible one. Sources are *image.RGBA
// or, where memory is tight, *image.Paletted; both have fast paths.
type Sprite struct {
	Source image.Image
	FrameW int
	FrameH int
	Frames int
	X, Y   int
	Frame  int
}

func (s *Sprite) frameRect() image.Rectangle {
	return image.Rect(s.Frame*s.FrameW, 0, (s.Frame+1)*s.FrameW, s.FrameH)
}

// Scene is an ordered stack of sprites, bottom first, over a logical canvas.
type Scene struct {
	width, height int
	background    color.RGBA
	layers        []*Sprite
}

func NewScene(width, height int) *Scene {
	return &Scene{
		width:      width,
		height:     height,
		background: color.RGBA{A: 0xff},
	}
}

func (s *Scene) Size() (int, int) {
	return s.width, s.height
}

// AddLayer puts src on top of the stack at (x, y). frameW of zero or the full
// width makes a single frame sprite.
func (s *Scene) AddLayer(src image.Image, frameW, x, y int) LayerID {
	b := src.Bounds()
	if frameW <= 0 || frameW > b.Dx() {
		frameW = b.Dx()
	}
	s.layers = append(s.layers, &Sprite{
		Source: src,
		FrameW: frameW,
		FrameH: b.Dy(),
		Frames: b.Dx() / frameW,
		X:      x,
		Y:      y,
	})
	return LayerID(len(s.layers) - 1)
}

func (s *Scene) Layer(id LayerID) (*Sprite, error) {
	if id < 0 || int(id) >= len(s.layers) {
		return nil, fmt.Errorf("layer %d: %w", id, ErrUnknownLayer)
	}
	return s.layers[id], nil
}

// SetOffset moves a layer. Bounds are the caller's business; sprites partly
// or fully off canvas are clipped.
func (s *Scene) SetOffset(id LayerID, x, y int) error {
	l, err := s.Layer(id)
	if err != nil {
		return err
	}
	l.X, l.Y = x, y
	return nil
}

func (s *Scene) SetFrame(id LayerID, frame int) error {
	l, err := s.Layer(id)
	if err != nil {
		return err
	}
	if frame < 0 || frame >= l.Frames {
		return fmt.Errorf("layer %d frame %d of %d: %w", id, frame, l.Frames, ErrFrameOutOfRange)
	}
	l.Frame = frame
	return nil
}

// Compose draws every layer into dst, which must be at least the scene size.
func (s *Scene) Compose(dst *image.RGBA) {
	canvas := image.Rect(0, 0, s.width, s.height)
	draw.Draw(dst, canvas, image.NewUniform(s.background), image.Point{}, draw.Src)
	for _, l := range s.layers {
		src := l.frameRect()
		at := image.Rect(l.X, l.Y, l.X+src.Dx(), l.Y+src.Dy()).Intersect(canvas)
		if at.Empty() {
			continue
		}
		sp := src.Min.Add(at.Min.Sub(image.Pt(l.X, l.Y)))
		if p, ok := l.Source.(*image.Paletted); ok {
			drawPalettedOver(dst, at, p, sp)
			continue
		}
		draw.Draw(dst, at, l.Source, sp, draw.Over)
	}
}

// drawPalettedOver is draw.Over for a paletted source. The generic path goes
// through color.Color per pixel, which is too slow on a microcontroller.
func drawPalettedOver(dst *image.RGBA, r image.Rectangle, src *image.Paletted, sp image.Point) {
	var lut [256]color.RGBA
	for i, c := range src.Palette {
		if i == len(lut) {
			break
		}
		lut[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	for y := 0; y < r.Dy(); y++ {
		si := src.PixOffset(sp.X, sp.Y+y)
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		for x := 0; x < r.Dx(); x, si, di = x+1, si+1, di+4 {
			c := lut[src.Pix[si]]
			switch c.A {
			case 0:
			case 0xff:
				dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2], dst.Pix[di+3] = c.R, c.G, c.B, c.A
			default:
				a := 0xff - uint32(c.A)
				d := dst.Pix[di : di+4 : di+4]
				d[0] = uint8(uint32(c.R) + uint32(d[0])*a/0xff)
				d[1] = uint8(uint32(c.G) + uint32(d[1])*a/0xff)
				d[2] = uint8(uint32(c.B) + uint32(d[2])*a/0xff)
				d[3] = uint8(uint32(c.A) + uint32(d[3])*a/0xff)
			}
		}
	}
}
