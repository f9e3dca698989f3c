// Package eye holds the animation state machine for one eye: an eased iris
// that twitches to random targets and an eyelid strip swept back and forth.
package eye

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/scheerer/eyeballs/internal/assets"
	"github.com/scheerer/eyeballs/internal/render"
)

// Event reports which timed branch an Update took.
type Event int

const (
	EventNone Event = iota
	EventRetarget
	EventBlink
)

func (e Event) String() string {
	switch e {
	case EventRetarget:
		return "retarget"
	case EventBlink:
		return "blink"
	default:
		return "none"
	}
}

// Layers are the scene layers an eye drives.
type Layers struct {
	Eyeball render.LayerID
	Iris    render.LayerID
	Eyelids render.LayerID
}

// Binding is everything an eye needs to know about its scene.
type Binding struct {
	Geometry   Geometry
	Layers     Layers
	FrameCount int
}

// NewScene stacks eyeball, iris and eyelids for a screenW x screenH logical
// screen with the iris at rest and the lids on frame 0.
func NewScene(set *assets.Set, screenW, screenH int) (*render.Scene, Binding) {
	irisW, irisH := set.IrisSize()
	geo := Geometry{ScreenW: screenW, ScreenH: screenH, IrisW: irisW, IrisH: irisH}

	scene := render.NewScene(screenW, screenH)
	layers := Layers{
		Eyeball: scene.AddLayer(set.Eyeball, 0, 0, 0),
		Iris:    scene.AddLayer(set.Iris, 0, geo.RestX(), geo.RestY()),
		Eyelids: scene.AddLayer(set.Eyelids, set.FrameWidth, 0, 0),
	}
	return scene, Binding{Geometry: geo, Layers: layers, FrameCount: set.FrameCount}
}

type Option func(*Eye)

// WithRand fixes the random source, mostly for tests.
func WithRand(r *rand.Rand) Option {
	return func(e *Eye) {
		e.rng = r
	}
}

// Eye is not safe for concurrent use; one goroutine drives it.
type Eye struct {
	name    string
	cfg     Config
	bind    Binding
	surface render.Surface
	rng     *rand.Rand

	x, y   float64
	tx, ty float64

	nextTwitch time.Time
	nextBlink  time.Time

	lidFrame     int
	lidDirection int

	irisX, irisY int
	presented    bool
}

// New binds an eye to surface. The iris starts at rest with both deadlines
// already expired, so the first Update picks a target.
func New(name string, cfg Config, bind Binding, surface render.Surface, opts ...Option) (*Eye, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	restX, restY := float64(bind.Geometry.RestX()), float64(bind.Geometry.RestY())
	e := &Eye{
		name:         name,
		cfg:          cfg,
		bind:         bind,
		surface:      surface,
		x:            restX,
		y:            restY,
		tx:           restX,
		ty:           restY,
		lidDirection: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return e, nil
}

func (e *Eye) Name() string {
	return e.name
}

// Update advances the eye to now: ease the iris, then either retarget or
// move the lids (retarget wins when both are due), then present.
func (e *Eye) Update(now time.Time) (Event, error) {
	rate := e.cfg.EasingRate
	e.x = e.x*(1-rate) + e.tx*rate
	e.y = e.y*(1-rate) + e.ty*rate

	ix, iy := int(math.Round(e.x)), int(math.Round(e.y))
	changed := !e.presented || ix != e.irisX || iy != e.irisY
	if err := e.surface.SetLayerOffset(e.bind.Layers.Iris, ix, iy); err != nil {
		return EventNone, fmt.Errorf("eye %s: move iris: %w", e.name, err)
	}
	e.irisX, e.irisY = ix, iy

	event := EventNone
	if now.After(e.nextTwitch) {
		e.retarget(now)
		event = EventRetarget
	} else if now.After(e.nextBlink) {
		moved, err := e.blink(now)
		if err != nil {
			return EventNone, fmt.Errorf("eye %s: move lids: %w", e.name, err)
		}
		changed = changed || moved
		event = EventBlink
	}

	if e.cfg.PresentOnChange && !changed {
		return event, nil
	}
	if err := e.surface.Present(); err != nil {
		return event, fmt.Errorf("eye %s: present: %w", e.name, err)
	}
	e.presented = true
	return event, nil
}

func (e *Eye) retarget(now time.Time) {
	e.nextTwitch = now.Add(e.uniformDuration(minTwitchDelay, e.cfg.TwitchTime))
	a := e.cfg.TwitchAmount
	e.tx = float64(e.bind.Geometry.RestX()) + e.uniform(-a, a)
	e.ty = float64(e.bind.Geometry.RestY()) + e.uniform(-a, a)
}

// blink steps the lid frame one way until it hits either end of the strip,
// then turns around. Strips of a single frame never move.
func (e *Eye) blink(now time.Time) (bool, error) {
	e.nextBlink = now.Add(e.uniformDuration(e.cfg.BlinkTime/2, e.cfg.BlinkTime*3/2))
	last := e.bind.FrameCount - 1
	if last < 1 {
		return false, nil
	}
	e.lidFrame += e.lidDirection
	if err := e.surface.SetSpriteFrame(e.bind.Layers.Eyelids, e.lidFrame); err != nil {
		return false, err
	}
	if e.lidFrame == 0 || e.lidFrame == last {
		e.lidDirection = -e.lidDirection
	}
	return true, nil
}

func (e *Eye) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*e.rng.Float64()
}

func (e *Eye) uniformDuration(lo, hi time.Duration) time.Duration {
	return lo + time.Duration(float64(hi-lo)*e.rng.Float64())
}

// State is a snapshot of the animation state.
type State struct {
	X, Y             float64
	TargetX, TargetY float64
	NextTwitch       time.Time
	NextBlink        time.Time
	LidFrame         int
	LidDirection     int
}

func (e *Eye) State() State {
	return State{
		X:            e.x,
		Y:            e.y,
		TargetX:      e.tx,
		TargetY:      e.ty,
		NextTwitch:   e.nextTwitch,
		NextBlink:    e.nextBlink,
		LidFrame:     e.lidFrame,
		LidDirection: e.lidDirection,
	}
}
