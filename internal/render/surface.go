package render

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Surface is a composited display. Layer changes only reach the device on
// Present.
type Surface interface {
	SetLayerOffset(layer LayerID, x, y int) error
	SetSpriteFrame(layer LayerID, frame int) error
	// Present pushes the current scene and blocks until the device took it.
	Present() error
	Close() error
}

type Options struct {
	// Scale is the integer factor from the logical scene to device pixels.
	Scale int
	// Rotation in degrees, 0 or 180. Quarter turns cost a full transpose
	// per frame and are not offered.
	Rotation int
}

func (o Options) Validate() error {
	if o.Rotation != 0 && o.Rotation != 180 {
		return ErrUnsupportedRotation
	}
	return nil
}

func (o Options) scale() int {
	if o.Scale < 1 {
		return 1
	}
	return o.Scale
}

// Compositor renders a Scene into a device sized frame. Backends embed it and
// only add the push to hardware.
type Compositor struct {
	scene    *Scene
	opts     Options
	logical  *image.RGBA
	physical *image.RGBA
}

func NewCompositor(scene *Scene, opts Options) (*Compositor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	w, h := scene.Size()
	return &Compositor{
		scene:   scene,
		opts:    opts,
		logical: image.NewRGBA(image.Rect(0, 0, w, h)),
	}, nil
}

// Options the compositor was built with.
func (c *Compositor) Options() Options {
	return c.opts
}

// Bounds of the device frame.
func (c *Compositor) Bounds() image.Rectangle {
	k := c.opts.scale()
	b := c.logical.Bounds()
	return image.Rect(0, 0, b.Dx()*k, b.Dy()*k)
}

func (c *Compositor) SetLayerOffset(layer LayerID, x, y int) error {
	return c.scene.SetOffset(layer, x, y)
}

func (c *Compositor) SetSpriteFrame(layer LayerID, frame int) error {
	return c.scene.SetFrame(layer, frame)
}

// Compose draws the scene at logical size, before scale and rotation. The
// image is reused by the next call.
func (c *Compositor) Compose() *image.RGBA {
	c.scene.Compose(c.logical)
	return c.logical
}

// Render composes the scene and returns the device frame, allocated on first
// use.
func (c *Compositor) Render() *image.RGBA {
	c.Compose()
	if c.opts.scale() == 1 && c.opts.Rotation == 0 {
		return c.logical
	}
	if c.physical == nil {
		c.physical = image.NewRGBA(c.Bounds())
	}
	if c.opts.scale() == 1 {
		copy(c.physical.Pix, c.logical.Pix)
	} else {
		xdraw.NearestNeighbor.Scale(c.physical, c.physical.Bounds(), c.logical, c.logical.Bounds(), xdraw.Src, nil)
	}
	if c.opts.Rotation == 180 {
		rotate180(c.physical)
	}
	return c.physical
}

// rotate180 reverses the pixel order in place.
func rotate180(img *image.RGBA) {
	pix := img.Pix
	for i, j := 0, len(pix)-4; i < j; i, j = i+4, j-4 {
		pix[i], pix[j] = pix[j], pix[i]
		pix[i+1], pix[j+1] = pix[j+1], pix[i+1]
		pix[i+2], pix[j+2] = pix[j+2], pix[i+2]
		pix[i+3], pix[j+3] = pix[j+3], pix[i+3]
	}
}
