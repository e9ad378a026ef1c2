// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/display"
)

// Not supported by this device. Returns display.ErrNotImplemented
func (d *Dev) AutoScroll(enabled bool) error {
	return ErrNotImplemented
}

// Return the number of columns the display supports
func (d *Dev) Cols() int {
	return d.width
}

// Return the number of rows the display supports.
func (d *Dev) Rows() int {
	return d.height
}

// Return the min column position.
func (d *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (d *Dev) MinRow() int {
	return 1
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			d.cursor = false
			d.blink = false
		case display.CursorBlink:
			d.blink = true
		case display.CursorUnderline:
			d.cursor = true
		case display.CursorBlock:
			d.cursor = true
			d.blink = true
		default:
			return fmt.Errorf("%s: unexpected cursor mode: %d", packageName, mode)
		}
	}
	return d.SetDisplayOptions(d.on, d.cursor, d.blink)
}

// Turn the display on / off
func (d *Dev) Display(on bool) error {
	d.on = on
	return d.SetDisplayOptions(on, d.cursor, d.blink)
}

// Move the cursor forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return d.Shift(ShiftCursor, ShiftLeft)
	case display.Forward:
		return d.Shift(ShiftCursor, ShiftRight)
	}
	return ErrNotImplemented
}

// Move the cursor to arbitrary position. Row and column are 1 based. The
// software write position used by Write() is not changed.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.height || col < d.MinCol() || col > d.width {
		return fmt.Errorf("%s: MoveTo(%d,%d) value out of range", packageName, row, col)
	}
	return d.SetDDRAMAddress(d.lineAddr[row-1] + byte(col-1))
}

// Turn the display's backlight on or off. You must supply a backlight
// controller when creating the display to use this.
func (d *Dev) Backlight(intensity display.Intensity) error {
	if d.blMono != nil {
		return d.blMono.Backlight(intensity)
	}
	return ErrNotImplemented
}

// Halt clears the display, turns the backlight and display off, and halts
// the data pins.
func (d *Dev) Halt() error {
	_ = d.Clear()
	if d.blMono != nil {
		_ = d.blMono.Backlight(0)
	}
	_ = d.Display(false)
	for _, p := range d.dataPins {
		if err := p.Halt(); err != nil {
			return wrap(err)
		}
	}
	return nil
}

// Return info about the display.
func (d *Dev) String() string {
	return fmt.Sprintf("%s: %d bit bus, Rows: %d, Cols: %d", packageName, len(d.dataPins), d.height, d.width)
}
