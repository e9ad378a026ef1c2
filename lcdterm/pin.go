// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdterm

import (
	"errors"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

var ErrNotImplemented = errors.New("lcdterm: not implemented")

// Pin is one emulated bus line. The enable pin triggers a bus sample on its
// rising edge; the others just remember their level.
type Pin struct {
	dev    *Dev
	name   string
	number int
	clock  bool
	level  gpio.Level
}

// Halt implements conn.Resource.
func (pin *Pin) Halt() error {
	return nil
}

// Name returns the name of the emulated pin.
func (pin *Pin) Name() string {
	return pin.name
}

// Number returns the number of the emulated pin.
func (pin *Pin) Number() int {
	return pin.number
}

// Deprecated: returns "Out"
func (pin *Pin) Function() string {
	return "Out"
}

// Write the specified gpio.Level to the pin.
func (pin *Pin) Out(l gpio.Level) error {
	rising := pin.clock && bool(l) && !bool(pin.level)
	pin.level = l
	if rising {
		pin.dev.latch()
	}
	return nil
}

// Not implemented.
func (pin *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return ErrNotImplemented
}

func (pin *Pin) String() string {
	return pin.name
}

var _ gpio.PinOut = &Pin{}
