package tiny

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/eyeballs/internal/eye"
	"github.com/scheerer/eyeballs/internal/render"
)

type pixelDisplay struct {
	w, h     int16
	pix      map[[2]int16]color.RGBA
	displays int
	err      error
}

func (d *pixelDisplay) Size() (int16, int16) { return d.w, d.h }

func (d *pixelDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.pix == nil {
		d.pix = make(map[[2]int16]color.RGBA)
	}
	d.pix[[2]int16{x, y}] = c
}

func (d *pixelDisplay) Display() error {
	d.displays++
	return d.err
}

// bufferDisplay assembles the windows it is sent into got.
type bufferDisplay struct {
	pixelDisplay
	got    *image.RGBA
	fills  int
	widest int
}

func newBufferDisplay(w, h int) *bufferDisplay {
	return &bufferDisplay{
		pixelDisplay: pixelDisplay{w: int16(w), h: int16(h)},
		got:          image.NewRGBA(image.Rect(0, 0, w, h)),
	}
}

func (d *bufferDisplay) FillRectangleWithBuffer(x, y, w, h int16, buf []color.RGBA) error {
	if len(buf) != int(w)*int(h) {
		return errors.New("buffer does not match window")
	}
	for i, c := range buf {
		d.got.SetRGBA(int(x)+i%int(w), int(y)+i/int(w), c)
	}
	d.fills++
	d.widest = max(d.widest, len(buf))
	return d.err
}

var green = color.RGBA{G: 0xff, A: 0xff}

func greenDotScene() *render.Scene {
	scene := render.NewScene(4, 4)
	dot := image.NewRGBA(image.Rect(0, 0, 1, 1))
	dot.SetRGBA(0, 0, green)
	scene.AddLayer(dot, 0, 1, 2)
	return scene
}

func TestPresentPixelByPixel(t *testing.T) {
	d := &pixelDisplay{w: 3, h: 3}
	s, err := New(greenDotScene(), render.Options{Scale: 1}, d)
	require.NoError(t, err)

	require.NoError(t, s.Present())
	assert.Equal(t, 1, d.displays)
	assert.Len(t, d.pix, 9, "clipped to the display")
	assert.Equal(t, green, d.pix[[2]int16{1, 2}])
	assert.Equal(t, color.RGBA{A: 0xff}, d.pix[[2]int16{0, 0}])

	d.err = errors.New("nak")
	assert.ErrorIs(t, s.Present(), d.err)
}

func TestPresentInBands(t *testing.T) {
	d := newBufferDisplay(8, 8)
	s, err := New(greenDotScene(), render.Options{Scale: 2}, d)
	require.NoError(t, err)

	require.NoError(t, s.Present())
	assert.Equal(t, 4, d.fills)
	assert.Equal(t, 16, d.widest, "one band of two rows")
	assert.Equal(t, green, d.got.RGBAAt(2, 4))
	assert.Equal(t, green, d.got.RGBAAt(3, 5))
	assert.Equal(t, color.RGBA{A: 0xff}, d.got.RGBAAt(0, 0))
	assert.Zero(t, d.displays)
	assert.Empty(t, d.pix)

	d.err = errors.New("nak")
	assert.ErrorIs(t, s.Present(), d.err)
}

func TestStreamedFrameMatchesRender(t *testing.T) {
	for _, opts := range []render.Options{
		{Scale: 3},
		{Scale: 3, Rotation: 180},
		{Scale: 1, Rotation: 180},
	} {
		mem, err := render.NewMemorySurface(greenDotScene(), opts)
		require.NoError(t, err)
		require.NoError(t, mem.Present())

		b := mem.Frame().Bounds()
		d := newBufferDisplay(b.Dx(), b.Dy())
		s, err := New(greenDotScene(), opts, d)
		require.NoError(t, err)
		require.NoError(t, s.Present())

		assert.Equal(t, mem.Frame().Pix, d.got.Pix, "%+v", opts)
	}
}

func TestPresentClipsBands(t *testing.T) {
	d := newBufferDisplay(5, 5)
	s, err := New(greenDotScene(), render.Options{Scale: 2}, d)
	require.NoError(t, err)

	require.NoError(t, s.Present())
	assert.Equal(t, 3, d.fills, "two full bands and a last single row")
	assert.Equal(t, green, d.got.RGBAAt(3, 4))
}

func liveHeap() int64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapAlloc)
}

func TestGC9A01EyeFitsRP2040(t *testing.T) {
	const rp2040SRAM = 264 * 1024

	assert.Equal(t, 80, GC9A01.Logical())
	d := newBufferDisplay(GC9A01.Size, GC9A01.Size)

	before := liveHeap()
	e, err := GC9A01.NewEye("eye", eye.DefaultConfig(), d, eye.WithRand(rand.New(rand.NewPCG(1, 1))))
	require.NoError(t, err)
	_, err = e.Update(time.Now())
	require.NoError(t, err)
	retained := liveHeap() - before
	runtime.KeepAlive(e)

	t.Logf("eye retains %d bytes", retained)
	// leave half the SRAM to the runtime, stacks and the driver
	assert.Less(t, retained, int64(rp2040SRAM/2))
	assert.Equal(t, GC9A01.Size/GC9A01.Scale, d.fills)
	assert.Equal(t, GC9A01.Size*GC9A01.Scale, d.widest)
	assert.NotEqual(t, color.RGBA{}, d.got.RGBAAt(GC9A01.Size/2, GC9A01.Size/2))
}
