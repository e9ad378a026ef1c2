// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 drives Hitachi HD44780 compatible character LCD modules
// over their parallel bus by bit-banging discrete GPIO output pins.
//
// The driver owns its pins for the life of the process: 4 or 8 data lines
// (most significant bit first), the enable strobe, the register select line,
// and optionally R/W. Every operation funnels through a single transfer
// primitive that splits 8 bit command and character codes into bus width
// sized chunks, so callers never deal with the 4 bit nibble protocol.
//
// The R/W line is never read; the driver waits out the worst case command
// execution time after every strobe instead of polling the busy flag.
//
// Implements periph.io/x/conn/v3/display.TextDisplay
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// writeMode is the register select level for a transfer: low selects the
// instruction register, high the data register.
type writeMode bool

// BusMode is the width of the parallel bus, as reported by Mode().
type BusMode byte

// Font selects the character generator dot matrix, forwarded verbatim into
// the function set instruction.
type Font byte

const (
	modeCommand writeMode = false
	modeData    writeMode = true

	ModeUnknown BusMode = 0
	Mode4Bit    BusMode = 4
	Mode8Bit    BusMode = 8

	Font5x8  Font = 0
	Font5x10 Font = 1

	packageName = "hd44780"

	// Worst case instruction execution time. The clock is held high for this
	// long on every strobe, which is a safe upper bound rather than a
	// measured minimum; without the busy flag there is no way to do better.
	settleDelay = 1530 * time.Microsecond
)

var ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Opts is the collection of pins and geometry for a display.
type Opts struct {
	// DataPins are the bus lines, most significant bit first: D7 is index 0.
	// 4 pins selects nibble transfers, 8 pins full byte transfers. Any other
	// count fails construction.
	DataPins []gpio.PinOut
	// Clock is the enable/strobe line.
	Clock gpio.PinOut
	// RegisterSelect is the command/data line.
	RegisterSelect gpio.PinOut
	// ReadWrite is reserved. Busy flag read back is not implemented; when the
	// pin is supplied the driver holds it low.
	ReadWrite gpio.PinOut
	// Backlight, if not nil, is used by Backlight() and Halt().
	Backlight display.DisplayBacklight
	// Width and Height are the display geometry in characters. Height must
	// be 1, 2 or 4.
	Width  int
	Height int
	Font   Font
}

// Dev is an open handle to one HD44780 display. It is not safe for
// concurrent use; every operation runs to completion on the calling
// goroutine before returning.
type Dev struct {
	dataPins []gpio.PinOut
	clockPin gpio.PinOut
	rsPin    gpio.PinOut
	rwPin    gpio.PinOut
	blMono   display.DisplayBacklight

	mode     BusMode
	width    int
	height   int
	font     Font
	lineAddr []byte
	// charIdx is the software write position in [0, width*height). Clear()
	// and Write() reset it; Home() deliberately does not, matching the
	// hardware cursor only as long as callers stick to those entry points.
	charIdx   int
	lastReady int64
	on        bool
	cursor    bool
	blink     bool
}

// New validates the pin assignment and geometry, brings the controller into
// a known bus mode, and returns a ready to use display.
//
// The controller's power-on state is unknown, so initialization always
// forces 8 bit mode first (three reset instructions), switches to 4 bit mode
// when only 4 data pins are wired, clears the display, and programs the line
// count and font.
func New(opts *Opts) (*Dev, error) {
	if n := len(opts.DataPins); n != 4 && n != 8 {
		return nil, fmt.Errorf("%s: number of data pins must be 4 or 8, got %d", packageName, n)
	}
	if opts.Clock == nil || opts.RegisterSelect == nil {
		return nil, fmt.Errorf("%s: clock and register select pins are required", packageName)
	}
	if opts.Width < 1 {
		return nil, fmt.Errorf("%s: invalid display width %d", packageName, opts.Width)
	}
	lineAddr, err := LineAddresses(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	d := &Dev{
		dataPins: append([]gpio.PinOut(nil), opts.DataPins...),
		clockPin: opts.Clock,
		rsPin:    opts.RegisterSelect,
		rwPin:    opts.ReadWrite,
		blMono:   opts.Backlight,
		width:    opts.Width,
		height:   opts.Height,
		font:     opts.Font,
		lineAddr: lineAddr,
	}
	if err = d.init(); err != nil {
		return nil, wrap(err)
	}
	return d, nil
}

func (d *Dev) init() error {
	if d.rwPin != nil {
		// Write only. A floating high R/W would put the controller in read
		// mode and wedge the bus.
		if err := d.rwPin.Out(gpio.Low); err != nil {
			return err
		}
	}
	if err := d.clockPin.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.Set8BitMode(); err != nil {
		return err
	}
	if len(d.dataPins) == 4 {
		if err := d.Set4BitMode(); err != nil {
			return err
		}
	}
	if err := d.Clear(); err != nil {
		return err
	}
	return d.SetFunction(d.height > 1, d.font)
}

// send drives one logical transfer. bits is the payload, most significant
// bit first; its length must be a multiple of the wired data pin count.
// Register select is set once for the whole call, then each chunk is latched
// onto the data pins and strobed with the clock held high for the settle
// delay. Pins are left at their last written values.
func (d *Dev) send(bits []gpio.Level, mode writeMode) error {
	if err := d.rsPin.Out(gpio.Level(mode)); err != nil {
		return err
	}
	n := len(d.dataPins)
	for i := 0; i < len(bits); i += n {
		for b := 0; b < n; b++ {
			if err := d.dataPins[b].Out(bits[i+b]); err != nil {
				return err
			}
		}
		if err := d.clockPin.Out(gpio.High); err != nil {
			return err
		}
		time.Sleep(settleDelay)
		if err := d.clockPin.Out(gpio.Low); err != nil {
			return err
		}
	}
	d.lastReady = time.Now().UnixMicro() + settleDelay.Microseconds()
	return nil
}

// waitReady sleeps until the execution window of the previous instruction
// has elapsed. send() maintains lastReady but does not call this: it already
// holds the clock for the full worst case delay, so by the time it returns
// the controller is ready again. The helper is kept for callers that need to
// interleave their own pin activity with the driver's.
func (d *Dev) waitReady() {
	if remain := d.lastReady - time.Now().UnixMicro(); remain > 0 {
		time.Sleep(time.Duration(remain+1) * time.Microsecond)
	}
}

// byteBits expands an 8 bit value into levels, most significant bit first.
func byteBits(v byte) []gpio.Level {
	bits := make([]gpio.Level, 8)
	for i := range bits {
		bits[i] = gpio.Level(v&(1<<(7-i)) != 0)
	}
	return bits
}

// Write sends a stream of character data to the display. The cursor is
// returned to the home position first; at each row boundary the matching
// DDRAM base address is set, and the write position wraps through the full
// cell count back to the top left corner. Characters are sent as their 8 bit
// ordinal values.
func (d *Dev) Write(p []byte) (n int, err error) {
	if err = d.Home(); err != nil {
		return
	}
	d.charIdx = 0
	for _, c := range p {
		if d.charIdx%d.width == 0 {
			if err = d.SetDDRAMAddress(d.lineAddr[d.charIdx/d.width]); err != nil {
				return
			}
		}
		if err = d.send(byteBits(c), modeData); err != nil {
			err = wrap(err)
			return
		}
		d.charIdx = (d.charIdx + 1) % (d.width * d.height)
		n++
	}
	return
}

// Write a string output to the display.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Mode returns the bus width, derived from the number of wired data pins.
func (d *Dev) Mode() BusMode {
	switch len(d.dataPins) {
	case 8:
		return Mode8Bit
	case 4:
		return Mode4Bit
	}
	return ModeUnknown
}

// Width returns the display width in characters.
func (d *Dev) Width() int {
	return d.width
}

// Height returns the display height in rows.
func (d *Dev) Height() int {
	return d.height
}

// DataPins returns the pins bound to the data bus, most significant bit
// first.
func (d *Dev) DataPins() []gpio.PinOut {
	return append([]gpio.PinOut(nil), d.dataPins...)
}

var _ display.TextDisplay = &Dev{}
var _ conn.Resource = &Dev{}
