// Package controller runs the eyes: one loop, one time sample per iteration,
// every eye updated in order.
package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scheerer/eyeballs/internal/eye"
	"github.com/scheerer/eyeballs/internal/logging"
)

var logger = logging.New("controller")

const slowWarningEvery = 10 * time.Second

type Config struct {
	// MinFrameTime paces the loop. Zero runs as fast as the displays present.
	MinFrameTime time.Duration
	// StatsInterval between frame rate reports; zero disables them.
	StatsInterval time.Duration
	// SlowFrame is the iteration time above which a warning is logged, at most
	// once every 10s. Zero disables it.
	SlowFrame time.Duration
}

type eyeStats struct {
	retargets uint64
	blinks    uint64
}

type Controller struct {
	cfg   Config
	clock eye.Clock
	sleep func(time.Duration)
	eyes  []*eye.Eye

	frames      uint64
	stats       []eyeStats
	statsFrames uint64
	statsStart  time.Time
	lastWarning time.Time
}

func New(cfg Config, clock eye.Clock, eyes ...*eye.Eye) *Controller {
	if clock == nil {
		clock = eye.SystemClock{}
	}
	return &Controller{
		cfg:   cfg,
		clock: clock,
		sleep: time.Sleep,
		eyes:  eyes,
		stats: make([]eyeStats, len(eyes)),
	}
}

// Tick updates every eye once with the same now. A present failure stops the
// tick and is returned; there is no reconnect.
func (c *Controller) Tick(now time.Time) error {
	for i, e := range c.eyes {
		ev, err := e.Update(now)
		if err != nil {
			return err
		}
		switch ev {
		case eye.EventRetarget:
			c.stats[i].retargets++
		case eye.EventBlink:
			c.stats[i].blinks++
		}
		if ev != eye.EventNone {
			logger.With(zap.String("eye", e.Name()), zap.Stringer("event", ev)).Debug("Eye event")
		}
	}
	c.frames++
	return nil
}

func (c *Controller) Frames() uint64 {
	return c.frames
}

// Run ticks until ctx is done, returning nil, or until an eye fails.
func (c *Controller) Run(ctx context.Context) error {
	logger.With(zap.Int("eyes", len(c.eyes)), zap.Stringer("minFrameTime", c.cfg.MinFrameTime)).Info("Eyes running")
	c.statsStart = c.clock.Now()

	for {
		select {
		case <-ctx.Done():
			logger.With(zap.Uint64("frames", c.frames)).Info("Eyes stopped")
			return nil
		default:
			startTime := c.clock.Now()
			if err := c.Tick(startTime); err != nil {
				logger.With(zap.Error(err)).Error("Eye update failed")
				return err
			}
			c.statsFrames++

			now := c.clock.Now()
			c.maybeReportStats(now)

			frameDuration := now.Sub(startTime)
			if c.cfg.SlowFrame > 0 && frameDuration > c.cfg.SlowFrame {
				if now.Sub(c.lastWarning) > slowWarningEvery {
					logger.With(
						zap.Stringer("frameDuration", frameDuration),
						zap.Stringer("slowFrame", c.cfg.SlowFrame)).
						Warn("Display present is slow. Consider a lower DISPLAY_SCALE or a smaller display.")
					c.lastWarning = now
				}
			} else if untilNextTick := c.cfg.MinFrameTime - frameDuration; untilNextTick > 0 {
				c.sleep(untilNextTick)
			}
		}
	}
}

func (c *Controller) maybeReportStats(now time.Time) {
	if c.cfg.StatsInterval <= 0 {
		return
	}
	elapsed := now.Sub(c.statsStart)
	if elapsed < c.cfg.StatsInterval {
		return
	}
	fps := float64(c.statsFrames) / elapsed.Seconds()
	for i, e := range c.eyes {
		logger.With(
			zap.String("eye", e.Name()),
			zap.Float64("fps", fps),
			zap.Uint64("retargets", c.stats[i].retargets),
			zap.Uint64("blinks", c.stats[i].blinks),
			zap.Int("lidFrame", e.State().LidFrame)).
			Info("Eye stats")
		c.stats[i] = eyeStats{}
	}
	c.statsFrames = 0
	c.statsStart = now
}
