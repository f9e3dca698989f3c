package eye

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid eye config")

// minTwitchDelay is the shortest time the iris holds a target.
const minTwitchDelay = 250 * time.Millisecond

type Config struct {
	// TwitchTime scales the pause between iris retargets; bigger is calmer.
	TwitchTime time.Duration
	// TwitchAmount is the largest iris deviation from rest, in logical pixels.
	TwitchAmount float64
	// BlinkTime scales the pause between eyelid frames; bigger is slower.
	BlinkTime time.Duration
	// EasingRate is the fraction of the remaining distance covered per tick.
	EasingRate float64
	// PresentOnChange skips Present on ticks that changed nothing visible.
	// Off presents every tick.
	PresentOnChange bool
}

func DefaultConfig() Config {
	return Config{
		TwitchTime:   2 * time.Second,
		TwitchAmount: 20,
		BlinkTime:    1800 * time.Millisecond,
		EasingRate:   0.25,
	}
}

func (c Config) Validate() error {
	switch {
	case c.EasingRate <= 0 || c.EasingRate > 1:
		return fmt.Errorf("%w: easing rate %v not in (0,1]", ErrInvalidConfig, c.EasingRate)
	case c.TwitchAmount < 0:
		return fmt.Errorf("%w: negative twitch amount %v", ErrInvalidConfig, c.TwitchAmount)
	case c.TwitchTime <= 0:
		return fmt.Errorf("%w: twitch time %v must be positive", ErrInvalidConfig, c.TwitchTime)
	case c.BlinkTime <= 0:
		return fmt.Errorf("%w: blink time %v must be positive", ErrInvalidConfig, c.BlinkTime)
	}
	return nil
}

// Geometry is the logical screen and the iris sprite size.
type Geometry struct {
	ScreenW, ScreenH int
	IrisW, IrisH     int
}

// RestX is the iris offset that centers it horizontally.
func (g Geometry) RestX() int {
	return g.ScreenW/2 - g.IrisW/2
}

func (g Geometry) RestY() int {
	return g.ScreenH/2 - g.IrisH/2
}
