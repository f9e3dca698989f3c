// Package assets loads the three images an eye is drawn from: the static
// eyeball, the iris sprite and the eyelid sprite strip.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
)

var (
	ErrNoFrames    = errors.New("eyelid strip is narrower than one frame")
	ErrNotPaletted = errors.New("transparent index requires a paletted image")
)

// NoTransparency disables color keying for an image.
const NoTransparency = -1

// Set is immutable once loaded. Loaded images are *image.RGBA; the paletted
// built-in set uses *image.Paletted.
type Set struct {
	Eyeball image.Image
	Iris    image.Image
	Eyelids image.Image

	FrameWidth  int
	FrameHeight int
	FrameCount  int
}

type Options struct {
	Dir         string
	EyeballFile string
	IrisFile    string
	EyelidFile  string

	IrisTransparent   int
	EyelidTransparent int

	// FrameWidth of one eyelid frame. Zero means the strip height, which
	// matches square frames cut to the logical screen size.
	FrameWidth int
}

func DefaultOptions(dir string) Options {
	return Options{
		Dir:               dir,
		EyeballFile:       "eye0_ball2.bmp",
		IrisFile:          "eye0_iris0.bmp",
		EyelidFile:        "eyelid_spritesheet2.bmp",
		IrisTransparent:   0,
		EyelidTransparent: 1,
	}
}

// IrisSize returns the iris sprite dimensions.
func (s *Set) IrisSize() (int, int) {
	b := s.Iris.Bounds()
	return b.Dx(), b.Dy()
}

// Frame returns the source rectangle of eyelid frame i.
func (s *Set) Frame(i int) image.Rectangle {
	return image.Rect(i*s.FrameWidth, 0, (i+1)*s.FrameWidth, s.FrameHeight)
}

// Load reads and decodes every asset. Any missing or unreadable file is an
// error; an eye cannot be built from a partial set.
func Load(opts Options) (*Set, error) {
	eyeball, err := decodeFile(filepath.Join(opts.Dir, opts.EyeballFile), NoTransparency)
	if err != nil {
		return nil, err
	}
	iris, err := decodeFile(filepath.Join(opts.Dir, opts.IrisFile), opts.IrisTransparent)
	if err != nil {
		return nil, err
	}
	eyelids, err := decodeFile(filepath.Join(opts.Dir, opts.EyelidFile), opts.EyelidTransparent)
	if err != nil {
		return nil, err
	}
	return NewSet(eyeball, iris, eyelids, opts.FrameWidth)
}

func decodeFile(path string, transparent int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	img, err := Decode(f, transparent)
	if err != nil {
		return nil, fmt.Errorf("asset %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Decode reads a BMP image. When transparent is not NoTransparency the image
// must be paletted and that palette entry becomes fully transparent.
func Decode(r io.Reader, transparent int) (*image.RGBA, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, err
	}
	return applyTransparency(img, transparent)
}

func applyTransparency(img image.Image, transparent int) (*image.RGBA, error) {
	if transparent != NoTransparency {
		p, ok := img.(*image.Paletted)
		if !ok {
			return nil, ErrNotPaletted
		}
		if transparent < 0 || transparent >= len(p.Palette) {
			return nil, fmt.Errorf("transparent index %d outside palette of %d colors", transparent, len(p.Palette))
		}
		keyed := *p
		keyed.Palette = make(color.Palette, len(p.Palette))
		copy(keyed.Palette, p.Palette)
		keyed.Palette[transparent] = color.RGBA{}
		img = &keyed
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// NewSet assembles a Set from decoded images. frameWidth of zero means square
// eyelid frames.
func NewSet(eyeball, iris, eyelids image.Image, frameWidth int) (*Set, error) {
	s := &Set{
		Eyeball: asRGBA(eyeball),
		Iris:    asRGBA(iris),
		Eyelids: asRGBA(eyelids),
	}
	strip := s.Eyelids.Bounds()
	s.FrameHeight = strip.Dy()
	s.FrameWidth = frameWidth
	if s.FrameWidth <= 0 {
		s.FrameWidth = s.FrameHeight
	}
	if s.FrameWidth <= 0 {
		return nil, ErrNoFrames
	}
	s.FrameCount = strip.Dx() / s.FrameWidth
	if s.FrameCount < 1 {
		return nil, fmt.Errorf("strip %dpx wide, frame %dpx: %w", strip.Dx(), s.FrameWidth, ErrNoFrames)
	}
	return s, nil
}

func asRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	return toRGBA(img)
}
