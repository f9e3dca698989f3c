package terminal

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/eyeballs/internal/render"
)

func halves(size int, top, bottom color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		c := top
		if y >= size/2 {
			c = bottom
		}
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newSim(t *testing.T, slots int) (tcell.SimulationScreen, *Terminal) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	term, err := NewWithScreen(sim, Options{}, slots)
	require.NoError(t, err)
	sim.SetSize(80, 25)
	term.width, term.height = 80, 25
	t.Cleanup(func() { _ = term.Close() })
	return sim, term
}

func cellAt(sim tcell.SimulationScreen, x, y int) tcell.SimCell {
	cells, w, _ := sim.GetContents()
	return cells[y*w+x]
}

func TestPresentDrawsHalfBlocks(t *testing.T) {
	sim, term := newSim(t, 1)

	red := color.RGBA{R: 0xff, A: 0xff}
	blue := color.RGBA{B: 0xff, A: 0xff}
	scene := render.NewScene(100, 100)
	scene.AddLayer(halves(100, red, blue), 0, 0, 0)

	s, err := term.Surface(scene, render.Options{Scale: 1}, 0)
	require.NoError(t, err)
	require.NoError(t, s.Present())

	view := term.viewport(0)
	assert.Equal(t, image.Rect(15, 0, 65, 25), view)

	top := cellAt(sim, view.Min.X, view.Min.Y)
	require.Equal(t, []rune{halfBlock}, top.Runes)
	fg, bg, _ := top.Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xff, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0xff, 0, 0), bg)

	bottom := cellAt(sim, view.Max.X-1, view.Max.Y-1)
	fg, bg, _ = bottom.Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0xff), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0xff), bg)

	outside := cellAt(sim, 0, 0)
	assert.NotEqual(t, []rune{halfBlock}, outside.Runes)
}

func TestSlotsSplitTheWidth(t *testing.T) {
	_, term := newSim(t, 2)

	left, right := term.viewport(0), term.viewport(1)
	assert.Equal(t, 40, left.Dx())
	assert.Equal(t, 20, left.Dy())
	assert.True(t, left.Max.X <= right.Min.X)
	assert.Less(t, right.Max.X, 81)
}

func TestQuitKeysCancel(t *testing.T) {
	for _, key := range []struct {
		key tcell.Key
		r   rune
	}{
		{tcell.KeyRune, 'q'},
		{tcell.KeyEscape, 0},
		{tcell.KeyCtrlC, 0},
	} {
		sim, term := newSim(t, 1)
		ctx, cancel := context.WithCancel(context.Background())
		term.WatchQuit(cancel)

		sim.InjectKey(key.key, key.r, tcell.ModNone)
		assert.Eventually(t, func() bool { return ctx.Err() != nil }, time.Second, 5*time.Millisecond)
		cancel()
	}
}
