package tiny

import (
	"tinygo.org/x/drivers"

	"github.com/scheerer/eyeballs/internal/assets"
	"github.com/scheerer/eyeballs/internal/eye"
	"github.com/scheerer/eyeballs/internal/render"
)

// Board is a square panel run from a microcontroller with the built-in eye.
type Board struct {
	// Size of the panel side in device pixels.
	Size     int
	Scale    int
	Frames   int
	Rotation int
}

// GC9A01 is the 240x240 round panel. The eye is drawn at 80x80 from paletted
// images and scaled up while streaming, which keeps it around 90KB of heap;
// an RP2040 has 264KB of SRAM.
var GC9A01 = Board{Size: 240, Scale: 3, Frames: 8}

// Logical is the scene size before scaling.
func (b Board) Logical() int {
	return b.Size / max(b.Scale, 1)
}

func (b Board) NewEye(name string, cfg eye.Config, display drivers.Displayer, opts ...eye.Option) (*eye.Eye, error) {
	n := b.Logical()
	set := assets.SynthesizePaletted(n, n*11/24, b.Frames)
	scene, bind := eye.NewScene(set, n, n)
	surface, err := New(scene, render.Options{Scale: b.Scale, Rotation: b.Rotation}, display)
	if err != nil {
		return nil, err
	}
	return eye.New(name, cfg, bind, surface, opts...)
}
