//go:build tinygo

// eyes-gc9a01 runs one eye on a 240x240 GC9A01 round display wired to the
// default SPI bus. The eye is drawn at a third of the panel size and scaled
// up while streaming to the panel, so it fits an RP2040. Build with:
//
//	tinygo flash -target=qtpy-rp2040 ./cmd/eyes-gc9a01
package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/gc9a01"

	"github.com/scheerer/eyeballs/internal/eye"
	"github.com/scheerer/eyeballs/internal/render/tiny"
)

const (
	resetPin = machine.D3
	dcPin    = machine.D2
	csPin    = machine.D1
	blPin    = machine.D0
)

func main() {
	time.Sleep(time.Second)

	board := tiny.GC9A01
	machine.SPI0.Configure(machine.SPIConfig{
		SCK:       machine.SPI0_SCK_PIN,
		SDO:       machine.SPI0_SDO_PIN,
		Frequency: 64 * machine.MHz,
	})
	display := gc9a01.New(machine.SPI0, resetPin, dcPin, csPin, blPin)
	display.Configure(gc9a01.Config{
		Width:       int16(board.Size),
		Height:      int16(board.Size),
		Orientation: gc9a01.HORIZONTAL,
	})
	display.EnableBacklight(true)
	println("gc9a01 init")

	e, err := board.NewEye("eye", eye.DefaultConfig(), &display)
	if err != nil {
		fail("eye", err)
	}

	frameCount := uint(0)
	previousSecond := int64(0)
	for {
		now := time.Now()
		if _, err := e.Update(now); err != nil {
			fail("update", err)
		}
		frameCount++

		second := now.Unix()
		if second != previousSecond {
			previousSecond = second
			print("#", second, " fps=", frameCount, "\r\n")
			frameCount = 0
		}
	}
}

// fail reports err forever; there is nothing to recover to.
func fail(what string, err error) {
	for {
		println(what, "failed:", err.Error())
		time.Sleep(time.Second)
	}
}
