package render

import "image"

// MemorySurface keeps presented frames in memory. It backs headless runs and
// tests.
type MemorySurface struct {
	*Compositor

	last     *image.RGBA
	presents int

	// FailWith, when set, is returned by Present instead of taking a frame.
	FailWith error
}

var _ Surface = (*MemorySurface)(nil)

func NewMemorySurface(scene *Scene, opts Options) (*MemorySurface, error) {
	c, err := NewCompositor(scene, opts)
	if err != nil {
		return nil, err
	}
	return &MemorySurface{
		Compositor: c,
		last:       image.NewRGBA(c.Bounds()),
	}, nil
}

func (m *MemorySurface) Present() error {
	if m.FailWith != nil {
		return m.FailWith
	}
	copy(m.last.Pix, m.Render().Pix)
	m.presents++
	return nil
}

func (m *MemorySurface) Close() error {
	return nil
}

// Frame returns the last presented frame.
func (m *MemorySurface) Frame() *image.RGBA {
	return m.last
}

func (m *MemorySurface) Presents() int {
	return m.presents
}
