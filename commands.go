// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "periph.io/x/conn/v3/gpio"

// ShiftTarget selects what a Shift instruction moves.
type ShiftTarget byte

// ShiftDirection selects which way a Shift instruction moves.
type ShiftDirection byte

const (
	ShiftCursor  ShiftTarget = 0
	ShiftDisplay ShiftTarget = 1

	ShiftLeft  ShiftDirection = 0
	ShiftRight ShiftDirection = 1
)

// command sends one 8 bit instruction.
func (d *Dev) command(pattern byte) error {
	return wrap(d.send(byteBits(pattern), modeCommand))
}

// sendModeNibble transfers a single high-nibble instruction, used only for
// the bus width transition sequence. On a 4 pin bus this is one chunk; on an
// 8 pin bus the low data lines are driven low.
func (d *Dev) sendModeNibble(v byte) error {
	bits := make([]gpio.Level, len(d.dataPins))
	for i := 0; i < 4; i++ {
		bits[i] = gpio.Level(v&(1<<(3-i)) != 0)
	}
	return d.send(bits, modeCommand)
}

// Set8BitMode transitions the controller to 8 bit bus mode. The reset
// instruction is sent three times so the transition is safe from any of the
// controller's power-on states.
func (d *Dev) Set8BitMode() error {
	for range 3 {
		if err := d.sendModeNibble(0x03); err != nil {
			return wrap(err)
		}
	}
	d.mode = Mode8Bit
	return nil
}

// Set4BitMode transitions the controller to 4 bit bus mode. The controller
// must pass through 8 bit mode first; if it has not, the reset sequence is
// issued before the switch instruction.
func (d *Dev) Set4BitMode() error {
	if d.mode != Mode8Bit {
		if err := d.Set8BitMode(); err != nil {
			return err
		}
	}
	if err := d.sendModeNibble(0x02); err != nil {
		return wrap(err)
	}
	d.mode = Mode4Bit
	return nil
}

// Clear blanks the display, returns the hardware cursor to home, and resets
// the software write position.
func (d *Dev) Clear() error {
	if err := d.command(0x01); err != nil {
		return err
	}
	d.charIdx = 0
	return nil
}

// Home returns the hardware cursor and display shift to the origin. The
// software write position is left alone; only Clear() and Write() reset it.
func (d *Dev) Home() error {
	return d.command(0x02)
}

// Shift moves the cursor or the whole display window one position left or
// right without touching DDRAM contents.
func (d *Dev) Shift(target ShiftTarget, dir ShiftDirection) error {
	val := byte(0x10)
	if target == ShiftDisplay {
		val |= 0x08
	}
	if dir == ShiftRight {
		val |= 0x04
	}
	return d.command(val)
}

// SetDisplayOptions sets the display, cursor and cursor blink on/off flags
// in a single instruction.
func (d *Dev) SetDisplayOptions(display, cursor, blink bool) error {
	val := byte(0x08)
	if display {
		val |= 0x04
	}
	if cursor {
		val |= 0x02
	}
	if blink {
		val |= 0x01
	}
	return d.command(val)
}

// SetEntryMode controls automatic cursor movement and display shifting after
// each data write: increment selects the direction, shiftDisplay moves the
// window instead of the cursor.
func (d *Dev) SetEntryMode(increment, shiftDisplay bool) error {
	val := byte(0x04)
	if increment {
		val |= 0x02
	}
	if shiftDisplay {
		val |= 0x01
	}
	return d.command(val)
}

// SetFunction programs the line count and font. The data length bit always
// reflects the wired bus width. The low two bits are don't-care on the
// controller and are driven high.
func (d *Dev) SetFunction(multiLine bool, font Font) error {
	val := byte(0x23)
	if len(d.dataPins) == 8 {
		val |= 0x10
	}
	if multiLine {
		val |= 0x08
	}
	if font == Font5x10 {
		val |= 0x04
	}
	return d.command(val)
}

// SetDDRAMAddress points subsequent data writes at the given display cell.
func (d *Dev) SetDDRAMAddress(addr byte) error {
	return d.command(addr | 0x80)
}

// SetCGRAMAddress points subsequent data writes into character generator
// RAM. The address is masked to 7 bits before the instruction bit is set.
func (d *Dev) SetCGRAMAddress(addr byte) error {
	return d.command((addr & 0x7f) | 0x40)
}
