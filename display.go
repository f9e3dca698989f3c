package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/scheerer/eyeballs/internal/render"
	"github.com/scheerer/eyeballs/internal/render/periph"
	"github.com/scheerer/eyeballs/internal/render/terminal"
)

const (
	displayTerminal = "TERMINAL"
	displayPeriph   = "PERIPH"
	displayHeadless = "HEADLESS"
)

// displays hands out one surface per eye and tears everything down together.
type displays struct {
	newSurface func(scene *render.Scene, slot int) (render.Surface, error)
	surfaces   []render.Surface
	closers    []func() error
}

func (d *displays) Surface(scene *render.Scene, slot int) (render.Surface, error) {
	s, err := d.newSurface(scene, slot)
	if err != nil {
		return nil, err
	}
	d.surfaces = append(d.surfaces, s)
	return s, nil
}

// Close closes surfaces first, then the devices behind them.
func (d *displays) Close() error {
	var err error
	for _, s := range d.surfaces {
		err = multierr.Append(err, s.Close())
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, d.closers[i]())
	}
	return err
}

func openDisplays(config EyesConfig, cancel context.CancelFunc) (*displays, error) {
	opts := config.renderOptions()
	switch config.DisplayType {
	case displayTerminal:
		sampler, ok := render.SamplerByName(config.TerminalSampler)
		if !ok {
			return nil, fmt.Errorf("unknown terminal sampler: %v", config.TerminalSampler)
		}
		term, err := terminal.Open(terminal.Options{Sampler: sampler, GridSize: 1}, config.EyeCount)
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		term.WatchQuit(cancel)
		return &displays{
			newSurface: func(scene *render.Scene, slot int) (render.Surface, error) {
				return term.Surface(scene, opts, slot)
			},
			closers: []func() error{term.Close},
		}, nil

	case displayPeriph:
		return openPeriph(config, opts)

	case displayHeadless:
		return &displays{
			newSurface: func(scene *render.Scene, _ int) (render.Surface, error) {
				return render.NewMemorySurface(scene, opts)
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown display type: %v", config.DisplayType)
}

// openPeriph drives one SSD1306 on an I²C bus. The panel is smaller than the
// eye, so frames are scaled down to it.
func openPeriph(config EyesConfig, opts render.Options) (_ *displays, err error) {
	if config.EyeCount != 1 {
		return nil, fmt.Errorf("%s drives a single panel, EYE_COUNT is %d", displayPeriph, config.EyeCount)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(config.PeriphBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", config.PeriphBus, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, bus.Close())
		}
	}()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	logger.With(zap.Stringer("device", dev), zap.Stringer("bounds", dev.Bounds())).Info("Opened periph display")

	return &displays{
		newSurface: func(scene *render.Scene, _ int) (render.Surface, error) {
			return periph.New(scene, opts, dev)
		},
		closers: []func() error{bus.Close},
	}, nil
}
