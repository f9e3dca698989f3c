package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caarlos0/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/scheerer/eyeballs/internal/render"
)

func headlessConfig(t *testing.T) EyesConfig {
	t.Helper()
	t.Setenv("DISPLAY_TYPE", displayHeadless)
	t.Setenv("DISPLAY_WIDTH", "120")
	t.Setenv("DISPLAY_HEIGHT", "120")
	var c EyesConfig
	require.NoError(t, env.Parse(&c))
	return c
}

func TestConfigDefaults(t *testing.T) {
	c := headlessConfig(t)

	assert.Equal(t, 2*time.Second, c.TwitchTime)
	assert.Equal(t, 20.0, c.TwitchAmount)
	assert.Equal(t, 1800*time.Millisecond, c.BlinkTime)
	assert.Equal(t, 0.25, c.EasingRate)
	assert.NoError(t, c.eyeConfig().Validate())
	assert.NoError(t, c.renderOptions().Validate())

	w, h := c.logicalSize()
	assert.Equal(t, 60, w)
	assert.Equal(t, 60, h)
}

func TestRunHeadless(t *testing.T) {
	c := headlessConfig(t)
	c.EyeCount = 2
	c.StatsInterval = 0

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, Run(ctx, cancel, c))
}

func TestRunRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	noop := func() {}

	c := headlessConfig(t)
	c.EyeCount = 0
	assert.ErrorContains(t, Run(ctx, noop, c), "EYE_COUNT")

	c = headlessConfig(t)
	c.Rotation = 90
	assert.ErrorIs(t, Run(ctx, noop, c), render.ErrUnsupportedRotation)

	c = headlessConfig(t)
	c.DisplayType = "HOLOGRAM"
	assert.ErrorContains(t, Run(ctx, noop, c), "unknown display type")

	c = headlessConfig(t)
	c.AssetDir = t.TempDir()
	assert.Error(t, Run(ctx, noop, c))
}

func TestDisplaysClose(t *testing.T) {
	var order []string
	closer := func(name string, err error) func() error {
		return func() error {
			order = append(order, name)
			return err
		}
	}
	busErr := errors.New("bus")
	d := &displays{closers: []func() error{closer("bus", busErr), closer("device", nil)}}

	scene := render.NewScene(4, 4)
	mem, err := render.NewMemorySurface(scene, render.Options{Scale: 1})
	require.NoError(t, err)
	d.surfaces = append(d.surfaces, mem)

	err = d.Close()
	assert.Equal(t, []string{"device", "bus"}, order)
	assert.Len(t, multierr.Errors(err), 1)
	assert.ErrorIs(t, err, busErr)
}

func TestEyeName(t *testing.T) {
	assert.Equal(t, "eye", eyeName(0, 1))
	assert.Equal(t, "left", eyeName(0, 2))
	assert.Equal(t, "right", eyeName(1, 2))
	assert.Equal(t, "eye2", eyeName(2, 3))
}
