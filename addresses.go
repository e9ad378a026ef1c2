// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// The controller has two fixed row segments in DDRAM, regardless of how many
// physical rows the glass has.
const (
	ddram0Start byte = 0x00
	ddram1Start byte = 0x40
)

// LineAddresses returns the DDRAM base address of each physical row for a
// width x height display. Supported heights are 1, 2 (16x2, 20x2, 40x2) and
// 4; any other height has no defined address mapping and is a configuration
// error.
//
// On 4 row glass the rows alternate segments with a half width offset: rows
// 2 and 3 live in the second half of each segment. This is the standard 20x4
// scheme.
func LineAddresses(width, height int) ([]byte, error) {
	switch height {
	case 1:
		return []byte{ddram0Start}, nil
	case 2:
		return []byte{ddram0Start, ddram1Start}, nil
	case 4:
		return []byte{
			ddram0Start,
			ddram1Start,
			ddram0Start + 0x14,
			ddram1Start + 0x14,
		}, nil
	}
	return nil, fmt.Errorf("%s: no DDRAM mapping for a display %d rows high", packageName, height)
}
