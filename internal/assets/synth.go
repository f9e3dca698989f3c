package assets

import (
	"image"
	"image/color"
	"math"
)

var (
	scleraColor  = color.RGBA{R: 0xf4, G: 0xee, B: 0xe6, A: 0xff}
	veinColor    = color.RGBA{R: 0xd8, G: 0x9a, B: 0x94, A: 0xff}
	irisOuter    = color.RGBA{R: 0x1c, G: 0x4e, B: 0x6e, A: 0xff}
	irisInner    = color.RGBA{R: 0x4f, G: 0x9a, B: 0x8c, A: 0xff}
	pupilColor   = color.RGBA{R: 0x08, G: 0x08, B: 0x0a, A: 0xff}
	glintColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	lidColor     = color.RGBA{R: 0xc8, G: 0x8c, B: 0x6e, A: 0xff}
	lashColor    = color.RGBA{R: 0x2a, G: 0x18, B: 0x10, A: 0xff}
	surroundFill = color.RGBA{A: 0xff}

	// synthPalette holds every color the built-in images use, transparent
	// first so a zeroed paletted image starts out clear.
	synthPalette = color.Palette{
		color.RGBA{},
		scleraColor, veinColor,
		irisOuter, irisInner, pupilColor, glintColor,
		lidColor, lashColor, surroundFill,
	}
)

// canvas is an image the drawing code paints into with plain RGBA values.
type canvas interface {
	paint(x, y int, c color.RGBA)
	img() image.Image
}

type rgbaCanvas struct{ *image.RGBA }

func (c rgbaCanvas) paint(x, y int, col color.RGBA) { c.SetRGBA(x, y, col) }
func (c rgbaCanvas) img() image.Image               { return c.RGBA }

type palettedCanvas struct{ *image.Paletted }

func (c palettedCanvas) img() image.Image { return c.Paletted }

func (c palettedCanvas) paint(x, y int, col color.RGBA) {
	for i, p := range synthPalette {
		if p == col {
			c.SetColorIndex(x, y, uint8(i))
			return
		}
	}
}

func newRGBA(w, h int) canvas {
	return rgbaCanvas{image.NewRGBA(image.Rect(0, 0, w, h))}
}

func newPaletted(w, h int) canvas {
	return palettedCanvas{image.NewPaletted(image.Rect(0, 0, w, h), synthPalette)}
}

// Synthesize draws a usable asset set for a size x size screen without any
// files: a round sclera, an iris of irisSize pixels and frames eyelid frames
// going from open (frame 0) to closed (frame frames-1).
func Synthesize(size, irisSize, frames int) *Set {
	return synthesize(size, irisSize, frames, newRGBA)
}

// SynthesizePaletted draws the same set as Synthesize with one byte per
// pixel, a quarter of the memory. Meant for microcontrollers.
func SynthesizePaletted(size, irisSize, frames int) *Set {
	return synthesize(size, irisSize, frames, newPaletted)
}

func synthesize(size, irisSize, frames int, newCanvas func(w, h int) canvas) *Set {
	if frames < 1 {
		frames = 1
	}
	eyeball := newCanvas(size, size)
	drawEyeball(eyeball, size)
	iris := newCanvas(irisSize, irisSize)
	drawIris(iris, irisSize)
	lids := newCanvas(size*frames, size)
	for i := 0; i < frames; i++ {
		closed := 0.0
		if frames > 1 {
			closed = float64(i) / float64(frames-1)
		}
		drawLids(lids, i*size, size, closed)
	}
	return &Set{
		Eyeball:     eyeball.img(),
		Iris:        iris.img(),
		Eyelids:     lids.img(),
		FrameWidth:  size,
		FrameHeight: size,
		FrameCount:  frames,
	}
}

func drawEyeball(img canvas, size int) {
	c := float64(size) / 2
	r := c * 0.96
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c)
			switch {
			case d > r:
				img.paint(x, y, surroundFill)
			case d > r*0.9:
				img.paint(x, y, veinColor)
			default:
				img.paint(x, y, scleraColor)
			}
		}
	}
}

func drawIris(img canvas, size int) {
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-c, float64(y)+0.5-c
			d := math.Hypot(dx, dy)
			switch {
			case d > c:
				// left transparent
			case math.Hypot(dx+c*0.3, dy+c*0.3) < c*0.12:
				img.paint(x, y, glintColor)
			case d < c*0.4:
				img.paint(x, y, pupilColor)
			case d < c*0.75:
				img.paint(x, y, irisInner)
			default:
				img.paint(x, y, irisOuter)
			}
		}
	}
}

// drawLids draws one eyelid frame at x offset ox. closed runs from 0 (fully
// open, only the corners outside the eye are covered) to 1 (shut).
func drawLids(strip canvas, ox, size int, closed float64) {
	c := float64(size) / 2
	r := c * 0.96
	edge := c * closed
	lash := math.Max(1, float64(size)/60)
	for y := 0; y < size; y++ {
		fy := float64(y) + 0.5
		for x := 0; x < size; x++ {
			fx := float64(x) + 0.5
			if math.Hypot(fx-c, fy-c) > r {
				strip.paint(ox+x, y, surroundFill)
				continue
			}
			if closed == 0 {
				continue
			}
			top, bottom := fy, float64(size)-fy
			switch {
			case top < edge || bottom < edge:
				strip.paint(ox+x, y, lidColor)
			case top < edge+lash || bottom < edge+lash:
				strip.paint(ox+x, y, lashColor)
			}
		}
	}
}
