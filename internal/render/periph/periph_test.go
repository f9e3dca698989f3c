package periph

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/eyeballs/internal/render"
)

type fakeDrawer struct {
	bounds image.Rectangle
	got    *image.RGBA
	draws  int
	halted bool
}

func (f *fakeDrawer) String() string          { return "fake" }
func (f *fakeDrawer) Halt() error             { f.halted = true; return nil }
func (f *fakeDrawer) ColorModel() color.Model { return color.RGBAModel }
func (f *fakeDrawer) Bounds() image.Rectangle { return f.bounds }

func (f *fakeDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	f.got = image.NewRGBA(f.bounds)
	draw.Draw(f.got, r, src, sp, draw.Src)
	f.draws++
	return nil
}

func whiteScene(w, h int) *render.Scene {
	scene := render.NewScene(w, h)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	scene.AddLayer(img, 0, 0, 0)
	return scene
}

func TestPresentSameSize(t *testing.T) {
	d := &fakeDrawer{bounds: image.Rect(0, 0, 8, 8)}
	s, err := New(whiteScene(4, 4), render.Options{Scale: 2}, d)
	require.NoError(t, err)
	assert.Nil(t, s.fitted)

	require.NoError(t, s.Present())
	assert.Equal(t, 1, d.draws)
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, d.got.RGBAAt(7, 7))
}

func TestPresentFitsDrawerBounds(t *testing.T) {
	d := &fakeDrawer{bounds: image.Rect(0, 0, 128, 64)}
	s, err := New(whiteScene(240, 240), render.Options{Scale: 1}, d)
	require.NoError(t, err)
	require.NotNil(t, s.fitted)

	require.NoError(t, s.Present())
	corner := d.got.RGBAAt(127, 63)
	assert.InDelta(t, 0xff, int(corner.R), 2)
	assert.InDelta(t, 0xff, int(corner.A), 2)

	require.NoError(t, s.Close())
	assert.True(t, d.halted)
}
