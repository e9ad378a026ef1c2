// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdterm emulates an HD44780 character module and renders it to the
// terminal (stdout) using ANSI color codes.
//
// The emulator sits on the display side of the parallel bus: it hands out
// gpio.PinOut pins for the data, enable and register select lines, samples
// them on each rising enable edge, and runs the controller's instruction
// state machine against an 80 cell DDRAM, including the 4 bit nibble
// protocol, entry modes and display shifts.
//
// Useful to develop against the hd44780 driver while your display module is
// still in the mail, and as the driver's hardware stand-in in tests.
package lcdterm

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/hd44780"
)

const (
	devName = "LCDTerm"

	// DDRAM segment geometry of the real controller: two 40 cell rows.
	segLen   = 40
	seg1Base = 0x40
	ramSize  = seg1Base + segLen
)

// Opts represents the options available for the emulated display.
type Opts struct {
	// Cols and Rows are the visible geometry. Rows must be 1, 2 or 4, like
	// the driver's.
	Cols int
	Rows int
	// DataPins is the emulated bus wiring, 4 or 8 data lines. 0 defaults
	// to 4.
	DataPins int
	// Palette renders the backlight blocks. nil uses ansi256.Default.
	Palette *ansi256.Palette
}

// Dev is an emulated HD44780 module that displays at the console.
type Dev struct {
	w        io.Writer
	palette  ansi256.Palette
	cols     int
	rows     int
	lineAddr []byte

	data  []*Pin
	clock *Pin
	rs    *Pin

	ddram     [ramSize]byte
	addr      byte
	cgram     bool
	shift     int
	increment bool
	on        bool
	mode8     bool
	haveHigh  bool
	highNib   byte
	intensity display.Intensity

	buf   bytes.Buffer
	drawn bool
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	n := opts.DataPins
	if n == 0 {
		n = 4
	}
	if n != 4 && n != 8 {
		return nil, fmt.Errorf("%s: number of data pins must be 4 or 8, got %d", devName, n)
	}
	lineAddr, err := hd44780.LineAddresses(opts.Cols, opts.Rows)
	if err != nil {
		return nil, err
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		w:        colorable.NewColorableStdout(),
		palette:  *p,
		cols:     opts.Cols,
		rows:     opts.Rows,
		lineAddr: lineAddr,
		// Power-on state of the real controller: 8 bit bus, display off,
		// incrementing cursor.
		mode8:     true,
		increment: true,
		intensity: 0xff,
	}
	for i := range d.ddram {
		d.ddram[i] = ' '
	}
	d.data = make([]*Pin, n)
	for i := range d.data {
		bit := n - 1 - i
		d.data[i] = &Pin{dev: d, name: fmt.Sprintf("%s_D%d", devName, 8-n+bit), number: bit}
	}
	d.clock = &Pin{dev: d, name: devName + "_E", number: n, clock: true}
	d.rs = &Pin{dev: d, name: devName + "_RS", number: n + 1}
	return d, nil
}

// DataPins returns the emulated data bus pins, most significant bit first,
// in the order the driver expects them.
func (d *Dev) DataPins() []gpio.PinOut {
	out := make([]gpio.PinOut, len(d.data))
	for i, p := range d.data {
		out[i] = p
	}
	return out
}

// Clock returns the emulated enable/strobe pin.
func (d *Dev) Clock() gpio.PinOut {
	return d.clock
}

// RegisterSelect returns the emulated command/data pin.
func (d *Dev) RegisterSelect() gpio.PinOut {
	return d.rs
}

// latch samples the bus at a rising enable edge.
func (d *Dev) latch() {
	var v byte
	for i, p := range d.data {
		if p.level {
			v |= 1 << (len(d.data) - 1 - i)
		}
	}
	if len(d.data) == 8 {
		d.execute(bool(d.rs.level), v)
		return
	}
	// 4 data lines. Until a function set clears the data length bit the
	// controller is still in 8 bit mode and sees only the high nibble.
	if d.mode8 {
		d.execute(bool(d.rs.level), v<<4)
		return
	}
	if !d.haveHigh {
		d.highNib = v
		d.haveHigh = true
		return
	}
	d.haveHigh = false
	d.execute(bool(d.rs.level), d.highNib<<4|v)
}

// execute runs one full instruction or data byte. Instructions decode by
// their highest set bit, as on the real controller.
func (d *Dev) execute(isData bool, b byte) {
	if isData {
		d.writeData(b)
		return
	}
	switch {
	case b&0x80 != 0:
		d.addr = b & 0x7f
		d.cgram = false
	case b&0x40 != 0:
		d.addr = b & 0x3f
		d.cgram = true
	case b&0x20 != 0:
		d.mode8 = b&0x10 != 0
		d.haveHigh = false
	case b&0x10 != 0:
		right := b&0x04 != 0
		if b&0x08 != 0 {
			// Display shift. Shifting the text left slides the visible
			// window right over DDRAM.
			if right {
				d.shift = (d.shift + segLen - 1) % segLen
			} else {
				d.shift = (d.shift + 1) % segLen
			}
			d.refresh()
		} else {
			d.advance(right)
		}
	case b&0x08 != 0:
		d.on = b&0x04 != 0
		d.refresh()
	case b&0x04 != 0:
		d.increment = b&0x02 != 0
	case b&0x02 != 0:
		d.addr = 0
		d.shift = 0
		d.cgram = false
		d.refresh()
	case b&0x01 != 0:
		for i := range d.ddram {
			d.ddram[i] = ' '
		}
		d.addr = 0
		d.shift = 0
		d.cgram = false
		d.increment = true
		d.refresh()
	}
}

func (d *Dev) writeData(b byte) {
	if d.cgram {
		// Custom glyph contents are accepted and discarded; rendering
		// always uses the host font.
		d.advance(d.increment)
		return
	}
	d.ddram[d.addr] = b
	d.advance(d.increment)
	d.refresh()
}

// advance moves the address counter one position, wrapping between the two
// DDRAM segments the way the hardware does.
func (d *Dev) advance(forward bool) {
	if d.cgram {
		if forward {
			d.addr = (d.addr + 1) & 0x3f
		} else {
			d.addr = (d.addr - 1) & 0x3f
		}
		return
	}
	if forward {
		switch d.addr {
		case segLen - 1:
			d.addr = seg1Base
		case ramSize - 1:
			d.addr = 0
		default:
			d.addr++
		}
	} else {
		switch d.addr {
		case seg1Base:
			d.addr = segLen - 1
		case 0:
			d.addr = ramSize - 1
		default:
			d.addr--
		}
	}
}

// cellAddr maps a visible cell to its DDRAM address under the current
// display shift. The shift wraps within each 40 cell segment.
func (d *Dev) cellAddr(row, col int) byte {
	base := int(d.lineAddr[row])
	seg := 0
	if base >= seg1Base {
		seg = seg1Base
	}
	return byte(seg + (base-seg+col+d.shift)%segLen)
}

// Text returns the characters currently visible, one string per row. A
// display that is switched off shows blanks. Character codes outside the
// printable ASCII range render as spaces.
func (d *Dev) Text() []string {
	out := make([]string, d.rows)
	for row := range out {
		cells := make([]byte, d.cols)
		for col := range cells {
			cells[col] = ' '
			if d.on {
				if c := d.ddram[d.cellAddr(row, col)]; c >= 0x20 && c <= 0x7e {
					cells[col] = c
				}
			}
		}
		out[row] = string(cells)
	}
	return out
}

// refresh redraws every visible row in place. This code is designed to
// minimize the amount of memory allocated per call.
func (d *Dev) refresh() {
	d.buf.Reset()
	if d.drawn {
		fmt.Fprintf(&d.buf, "\033[%dA", d.rows)
	}
	block := d.palette.Block(d.backlightColor())
	for _, line := range d.Text() {
		_, _ = d.buf.WriteString("\r\033[0m")
		_, _ = d.buf.WriteString(block)
		_, _ = d.buf.WriteString(line)
		_, _ = d.buf.WriteString(block)
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, _ = d.buf.WriteTo(d.w)
}

func (d *Dev) backlightColor() color.NRGBA {
	i := uint32(d.intensity)
	return color.NRGBA{
		R: byte(0x20 * i / 0xff),
		G: byte(0xe0 * i / 0xff),
		B: byte(0x40 * i / 0xff),
		A: 255,
	}
}

// Backlight sets the intensity used for the bezel blocks flanking the text.
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.intensity = intensity
	d.refresh()
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s(%dx%d)", devName, d.cols, d.rows)
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not left corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

var _ conn.Resource = &Dev{}
var _ display.DisplayBacklight = &Dev{}
