// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/mcp23xxx"
	"periph.io/x/devices/v3/nxp74hc595"
)

const (
	// LCD line to expander GPIO number (not physical pin) mapping for the
	// Adafruit I2C/SPI backpack. The same numbering is used on both sides.
	afRS        = 1
	afEnable    = 2
	afD4        = 3
	afD5        = 4
	afD6        = 5
	afD7        = 6
	afBacklight = 7
)

// NewAdafruitI2CBackpack returns a display wired through the I²C side of the
// Adafruit I2C/SPI LCD backpack, which uses an MCP23008 I/O expander.
//
// # Product Information
//
// https://www.adafruit.com/product/292
func NewAdafruitI2CBackpack(bus i2c.Bus, address uint16, width, height int) (*Dev, error) {
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23008, address)
	if err != nil {
		return nil, err
	}
	gr := *mcp.Group(0, []int{afD7, afD6, afD5, afD4, afRS, afEnable, afBacklight})
	data := make([]gpio.PinOut, 4)
	for i := range data {
		data[i], _ = gr.ByOffset(i).(gpio.PinOut)
	}
	rs, _ := gr.ByOffset(4).(gpio.PinOut)
	enable, _ := gr.ByOffset(5).(gpio.PinOut)
	bl, _ := gr.ByOffset(6).(gpio.PinOut)
	return New(&Opts{
		DataPins:       data,
		Clock:          enable,
		RegisterSelect: rs,
		Backlight:      NewBacklight(bl),
		Width:          width,
		Height:         height,
	})
}

// NewAdafruitSPIBackpack returns a display wired through the SPI side of the
// Adafruit I2C/SPI backpack, which uses a 74HC595 serial to parallel shift
// register.
func NewAdafruitSPIBackpack(conn spi.Conn, width, height int) (*Dev, error) {
	chip, err := nxp74hc595.New(conn)
	if err != nil {
		return nil, err
	}
	return New(&Opts{
		DataPins:       []gpio.PinOut{chip.Pins[afD7], chip.Pins[afD6], chip.Pins[afD5], chip.Pins[afD4]},
		Clock:          chip.Pins[afEnable],
		RegisterSelect: chip.Pins[afRS],
		Backlight:      NewBacklight(chip.Pins[afBacklight]),
		Width:          width,
		Height:         height,
	})
}
