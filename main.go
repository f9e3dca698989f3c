package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/caarlos0/env"
	"github.com/scheerer/eyeballs/internal/assets"
	"github.com/scheerer/eyeballs/internal/controller"
	"github.com/scheerer/eyeballs/internal/eye"
	"github.com/scheerer/eyeballs/internal/logging"
	"github.com/scheerer/eyeballs/internal/render"
)

var (
	logger = logging.New("main")
	config = EyesConfig{}
)

type EyesConfig struct {
	TwitchTime      time.Duration `env:"EYE_TWITCH_TIME" envDefault:"2s"`
	TwitchAmount    float64       `env:"EYE_TWITCH_AMOUNT" envDefault:"20"`
	BlinkTime       time.Duration `env:"EYE_BLINK_TIME" envDefault:"1.8s"`
	EasingRate      float64       `env:"EYE_SPEED" envDefault:"0.25"`
	Rotation        int           `env:"EYE_ROTATION" envDefault:"0"`
	EyeCount        int           `env:"EYE_COUNT" envDefault:"1"`
	PresentOnChange bool          `env:"EYE_PRESENT_ON_CHANGE" envDefault:"false"`
	MinFrameTime    time.Duration `env:"EYE_MIN_FRAME_TIME" envDefault:"0s"`

	DisplayType     string `env:"DISPLAY_TYPE" envDefault:"TERMINAL"`
	DisplayWidth    int    `env:"DISPLAY_WIDTH" envDefault:"480"`
	DisplayHeight   int    `env:"DISPLAY_HEIGHT" envDefault:"480"`
	DisplayScale    int    `env:"DISPLAY_SCALE" envDefault:"2"`
	TerminalSampler string `env:"TERMINAL_SAMPLER" envDefault:"AVERAGE"`
	PeriphBus       string `env:"PERIPH_BUS" envDefault:""`

	AssetDir               string `env:"ASSET_DIR" envDefault:""`
	EyeballFile            string `env:"EYEBALL_FILE" envDefault:"eye0_ball2.bmp"`
	IrisFile               string `env:"IRIS_FILE" envDefault:"eye0_iris0.bmp"`
	EyelidFile             string `env:"EYELID_FILE" envDefault:"eyelid_spritesheet2.bmp"`
	IrisTransparentIndex   int    `env:"IRIS_TRANSPARENT_INDEX" envDefault:"0"`
	EyelidTransparentIndex int    `env:"EYELID_TRANSPARENT_INDEX" envDefault:"1"`
	EyelidFrameWidth       int    `env:"EYELID_FRAME_WIDTH" envDefault:"0"`

	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string        `env:"LOG_FILE" envDefault:"eyeballs.log"`
	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"10s"`
	SlowFrame     time.Duration `env:"SLOW_FRAME_WARNING" envDefault:"250ms"`
}

func (c EyesConfig) eyeConfig() eye.Config {
	return eye.Config{
		TwitchTime:      c.TwitchTime,
		TwitchAmount:    c.TwitchAmount,
		BlinkTime:       c.BlinkTime,
		EasingRate:      c.EasingRate,
		PresentOnChange: c.PresentOnChange,
	}
}

func (c EyesConfig) renderOptions() render.Options {
	return render.Options{Scale: c.DisplayScale, Rotation: c.Rotation}
}

// logicalSize is the scene size before the display scale is applied.
func (c EyesConfig) logicalSize() (int, int) {
	scale := max(c.DisplayScale, 1)
	return c.DisplayWidth / scale, c.DisplayHeight / scale
}

func main() {
	defer logger.Sync()

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}

	level, err := zapcore.ParseLevel(config.LogLevel)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse LOG_LEVEL")
	}
	logging.GetLeveler().SetAllLevels(level)

	// os.Exit in Fatal skips deferred calls, so failures restore stdout first
	restoreLogs := func() {}
	if config.DisplayType == displayTerminal {
		restoreLogs, err = logging.Redirect(config.LogFile)
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to open LOG_FILE")
		}
		defer restoreLogs()
	}

	logger.With(zap.Any("config", config)).Info("Starting eyes")

	logger.Info("Adjust EYE_TWITCH_TIME to change how long the iris holds still. Bigger is less twitchy.")
	logger.Info("Adjust EYE_TWITCH_AMOUNT to change how far (in logical pixels) the iris may wander from center.")
	logger.Info("Adjust EYE_BLINK_TIME to change the eyelid speed. Bigger is slower.")
	logger.Info("Adjust EYE_SPEED between 0 and 1. Bigger moves the iris more snappily.")
	logger.Info("EYE_ROTATION only supports 0 and 180.")
	logger.Info("Adjust DISPLAY_TYPE to choose the display. Valid values are: [TERMINAL, PERIPH, HEADLESS]")
	logger.Info("Leave ASSET_DIR empty to use the built-in eye images.")
	logger.Info("Press Ctrl+C (or q in the terminal) to stop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cancel, config)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-shutdown:
		logger.Info("Shutting down")
		cancel()
		err = <-done
	case err = <-done:
	}
	if err != nil {
		restoreLogs()
		logger.With(zap.Error(err)).Fatal("Eyes failed")
	}
	logger.Info("Stopped")
}

// Run builds the eyes and their displays and runs them until ctx is done.
func Run(ctx context.Context, cancel context.CancelFunc, config EyesConfig) error {
	if config.EyeCount < 1 {
		return fmt.Errorf("EYE_COUNT must be at least 1, got %d", config.EyeCount)
	}
	if err := config.eyeConfig().Validate(); err != nil {
		return err
	}
	if err := config.renderOptions().Validate(); err != nil {
		return err
	}

	set, err := loadAssets(config)
	if err != nil {
		return err
	}
	if set.FrameCount < 2 {
		logger.With(zap.Int("frames", set.FrameCount)).Warn("Eyelid strip has a single frame, the eyes will not blink")
	}

	displays, err := openDisplays(config, cancel)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := displays.Close(); closeErr != nil {
			logger.With(zap.Error(closeErr)).Error("Failed to close displays")
		}
	}()

	w, h := config.logicalSize()
	eyes := make([]*eye.Eye, 0, config.EyeCount)
	for i := 0; i < config.EyeCount; i++ {
		scene, bind := eye.NewScene(set, w, h)
		surface, err := displays.Surface(scene, i)
		if err != nil {
			return err
		}
		e, err := eye.New(eyeName(i, config.EyeCount), config.eyeConfig(), bind, surface)
		if err != nil {
			return err
		}
		eyes = append(eyes, e)
	}

	return controller.New(controller.Config{
		MinFrameTime:  config.MinFrameTime,
		StatsInterval: config.StatsInterval,
		SlowFrame:     config.SlowFrame,
	}, eye.SystemClock{}, eyes...).Run(ctx)
}

func loadAssets(config EyesConfig) (*assets.Set, error) {
	w, h := config.logicalSize()
	if config.AssetDir == "" {
		size := min(w, h)
		logger.With(zap.Int("size", size)).Info("Using built-in eye images")
		return assets.Synthesize(size, size*11/24, 16), nil
	}

	opts := assets.DefaultOptions(config.AssetDir)
	opts.EyeballFile = config.EyeballFile
	opts.IrisFile = config.IrisFile
	opts.EyelidFile = config.EyelidFile
	opts.IrisTransparent = config.IrisTransparentIndex
	opts.EyelidTransparent = config.EyelidTransparentIndex
	opts.FrameWidth = config.EyelidFrameWidth
	if opts.FrameWidth == 0 {
		opts.FrameWidth = w
	}
	set, err := assets.Load(opts)
	if err != nil {
		return nil, err
	}
	irisW, irisH := set.IrisSize()
	logger.With(
		zap.String("dir", config.AssetDir),
		zap.Int("irisW", irisW),
		zap.Int("irisH", irisH),
		zap.Int("eyelidFrames", set.FrameCount)).
		Info("Loaded eye images")
	return set, nil
}

func eyeName(i, n int) string {
	switch {
	case n == 1:
		return "eye"
	case n == 2 && i == 0:
		return "left"
	case n == 2 && i == 1:
		return "right"
	}
	return "eye" + strconv.Itoa(i)
}
