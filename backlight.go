// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOMonoBacklight is a monochrome backlight driven by a single GPIO pin.
// Implements display.DisplayBacklight.
type GPIOMonoBacklight struct {
	blPin gpio.PinOut
}

// NewBacklight wraps the pin that switches the backlight so it can be passed
// in Opts.Backlight.
func NewBacklight(blPin gpio.PinOut) *GPIOMonoBacklight {
	return &GPIOMonoBacklight{blPin: blPin}
}

// Turn the display backlight on or off. Any non-zero intensity is on; the
// pin has no dimming.
func (bl *GPIOMonoBacklight) Backlight(intensity display.Intensity) error {
	if intensity == 0 {
		return bl.blPin.Out(gpio.Low)
	}
	return bl.blPin.Out(gpio.High)
}

var _ display.DisplayBacklight = &GPIOMonoBacklight{}
