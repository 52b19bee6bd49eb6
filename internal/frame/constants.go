// go-utr
// Copyright (c) 2025 The go-utr Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-utr.
//
// go-utr is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-utr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-utr; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package frame provides frame layout constants, checksum helpers and
// byte-stream reassembly for UTR reader communication
package frame

// Frame markers and control bytes
const (
	STX     = 0x02 // Start of frame
	Address = 0x00 // Fixed device address on LAN/USB models
	ETX     = 0x03 // End of data section
	CR      = 0x0D // Frame terminator
)

// Frame layout. A frame is:
//
//	STX ADDR CMD LEN DATA[LEN] ETX SUM CR
//
// The checksum covers STX through ETX inclusive.
const (
	HeaderLength = 4 // STX + address + command + data length
	FooterLength = 3 // ETX + SUM + CR

	// Byte offsets within a complete frame.
	CommandOffset = 2
	LengthOffset  = 3
	DataOffset    = 4

	// MaxDataLength is the largest payload a single frame can carry.
	MaxDataLength = 255
)

// TotalLength returns the full frame size for a given data length.
func TotalLength(dataLen int) int {
	return HeaderLength + dataLen + FooterLength
}
