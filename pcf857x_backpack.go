// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/pcf857x"
)

const (
	// LCD line to PCF8574 GPIO number (not physical pin) mapping for the
	// common I²C backpack boards.
	pcfRS        = 0
	pcfRW        = 1
	pcfEnable    = 2
	pcfBacklight = 3
	pcfD4        = 4
	pcfD5        = 5
	pcfD6        = 6
	pcfD7        = 7
)

// NewPCF857xBackpack returns a display wired through a PCF8574 I²C backpack.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// The backpack only brings out the high data nibble, so the bus always runs
// in 4 bit mode. R/W is connected on these boards; the driver never reads,
// so it is held low.
func NewPCF857xBackpack(bus i2c.Bus, address uint16, width, height int) (*Dev, error) {
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	if err := pcf.Pins[pcfRW].Out(gpio.Low); err != nil {
		return nil, wrap(err)
	}
	return New(&Opts{
		DataPins:       []gpio.PinOut{pcf.Pins[pcfD7], pcf.Pins[pcfD6], pcf.Pins[pcfD5], pcf.Pins[pcfD4]},
		Clock:          pcf.Pins[pcfEnable],
		RegisterSelect: pcf.Pins[pcfRS],
		ReadWrite:      pcf.Pins[pcfRW],
		Backlight:      NewBacklight(pcf.Pins[pcfBacklight]),
		Width:          width,
		Height:         height,
	})
}
