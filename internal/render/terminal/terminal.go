// Package terminal previews eyes in a terminal. Each character cell shows two
// vertically stacked blocks using the upper half block glyph.
package terminal

import (
	"context"
	"image"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/scheerer/eyeballs/internal/render"
)

const halfBlock = '▀'

type Options struct {
	// Sampler reduces each block of device pixels to one color.
	Sampler render.Sampler
	// GridSize is the sampling stride inside a block; 1 visits every pixel.
	GridSize int
}

// Terminal owns the tcell screen shared by all eye surfaces. Surfaces split
// the width into equal slots.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	opts   Options
	slots  int
	width  int
	height int
}

// Open takes over the controlling terminal.
func Open(opts Options, slots int) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, opts, slots)
}

// NewWithScreen initialises screen and uses it for slots surfaces.
func NewWithScreen(screen tcell.Screen, opts Options, slots int) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	screen.Clear()
	if opts.Sampler == nil {
		opts.Sampler = render.AverageColor
	}
	if slots < 1 {
		slots = 1
	}
	t := &Terminal{screen: screen, opts: opts, slots: slots}
	t.width, t.height = screen.Size()
	return t, nil
}

// WatchQuit polls terminal events until the screen closes. q, Esc and Ctrl+C
// call cancel; the terminal is in raw mode so no SIGINT arrives for them.
func (t *Terminal) WatchQuit(cancel context.CancelFunc) {
	go func() {
		for {
			ev := t.screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventResize:
				t.mu.Lock()
				t.width, t.height = ev.Size()
				t.screen.Clear()
				t.screen.Sync()
				t.mu.Unlock()
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					cancel()
				}
			}
		}
	}()
}

func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}

// Surface returns the surface drawing scene into slot.
func (t *Terminal) Surface(scene *render.Scene, opts render.Options, slot int) (*Surface, error) {
	c, err := render.NewCompositor(scene, opts)
	if err != nil {
		return nil, err
	}
	return &Surface{Compositor: c, term: t, slot: slot}, nil
}

// viewport is the cell rectangle of a slot, square in pixel terms and
// centered in the slot.
func (t *Terminal) viewport(slot int) image.Rectangle {
	slotW := t.width / t.slots
	side := min(slotW, t.height*2)
	cols, rows := side, side/2
	x0 := slot*slotW + (slotW-cols)/2
	y0 := (t.height - rows) / 2
	return image.Rect(x0, y0, x0+cols, y0+rows)
}

type Surface struct {
	*render.Compositor
	term *Terminal
	slot int
}

var _ render.Surface = (*Surface)(nil)

func (s *Surface) Present() error {
	frame := s.Render()

	t := s.term
	t.mu.Lock()
	defer t.mu.Unlock()

	view := t.viewport(s.slot)
	if view.Empty() {
		return nil
	}
	fb := frame.Bounds()
	// each cell covers one block column and two block rows
	blockW := float64(fb.Dx()) / float64(view.Dx())
	blockH := float64(fb.Dy()) / float64(view.Dy()*2)
	block := func(bx, by int) image.Rectangle {
		r := image.Rect(
			fb.Min.X+int(float64(bx)*blockW), fb.Min.Y+int(float64(by)*blockH),
			fb.Min.X+int(float64(bx+1)*blockW), fb.Min.Y+int(float64(by+1)*blockH),
		)
		if r.Dx() == 0 {
			r.Max.X = r.Min.X + 1
		}
		if r.Dy() == 0 {
			r.Max.Y = r.Min.Y + 1
		}
		return r
	}

	for cy := 0; cy < view.Dy(); cy++ {
		for cx := 0; cx < view.Dx(); cx++ {
			top := t.opts.Sampler(frame, block(cx, cy*2), t.opts.GridSize)
			bottom := t.opts.Sampler(frame, block(cx, cy*2+1), t.opts.GridSize)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(view.Min.X+cx, view.Min.Y+cy, halfBlock, nil, style)
		}
	}
	t.screen.Show()
	return nil
}

// Close leaves the shared screen to Terminal.Close.
func (s *Surface) Close() error {
	return nil
}
