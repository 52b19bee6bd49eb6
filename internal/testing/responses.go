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

// Package testing provides canned reader reply frames for tests.
package testing

import (
	"github.com/rftools/go-utr/internal/frame"
)

// Command bytes for reference
const (
	CmdModeSet    = 0x4E
	CmdROMVersion = 0x4F
	CmdUHF        = 0x55
	CmdBuzzer     = 0x42

	RespAck           = 0x30
	RespNack          = 0x31
	RespInventoryData = 0x6C
)

// BuildFrame wraps data in a complete wire frame for cmd
func BuildFrame(cmd byte, data []byte) []byte {
	raw := make([]byte, 0, frame.TotalLength(len(data)))
	raw = append(raw, frame.STX, frame.Address, cmd, byte(len(data)))
	raw = append(raw, data...)
	raw = append(raw, frame.ETX)
	raw = append(raw, frame.CalculateChecksum(raw))
	raw = append(raw, frame.CR)
	return raw
}

// BuildAckFrame creates a terminal ACK carrying data
func BuildAckFrame(data ...byte) []byte {
	return BuildFrame(RespAck, data)
}

// BuildNackFrame creates a NACK echoing detail and carrying errorCode
func BuildNackFrame(detail, errorCode byte) []byte {
	return BuildFrame(RespNack, []byte{detail, errorCode})
}

// BuildROMVersionAck creates a ROM version reply with an ASCII version
func BuildROMVersionAck(version string) []byte {
	data := append([]byte{0x90}, []byte(version)...)
	return BuildFrame(RespAck, data)
}

// BuildCommandModeAck creates a mode switch acknowledgment
func BuildCommandModeAck() []byte {
	return BuildFrame(RespAck, []byte{0x00})
}

// BuildPowerAck creates an output power reply, tenths of dBm
// little-endian at payload bytes 3..4
func BuildPowerAck(tenths uint16) []byte {
	return BuildFrame(RespAck, []byte{0x43, 0x01, 0x00, byte(tenths), byte(tenths >> 8)})
}

// BuildChannelAck creates a frequency channel reply
func BuildChannelAck(channel byte) []byte {
	return BuildFrame(RespAck, []byte{0x43, 0x02, 0x00, channel})
}

// BuildInventoryParamsAck creates an inventory parameter query reply
func BuildInventoryParamsAck(params []byte) []byte {
	data := append([]byte{0x41}, params...)
	return BuildFrame(RespAck, data)
}

// BuildSetParamAck creates an inventory parameter write acknowledgment
func BuildSetParamAck() []byte {
	return BuildFrame(RespAck, []byte{0x30})
}

// BuildInventoryAck creates the terminal inventory acknowledgment
// announcing count tags, little-endian at payload bytes 2..3
func BuildInventoryAck(count uint16) []byte {
	return BuildFrame(RespAck, []byte{0x10, 0x00, byte(count), byte(count >> 8)})
}

// BuildTagDataFrame creates one inventory tag observation. rssiTenths
// is the signal strength in tenths of dBm, e.g. -720 for -72.0 dBm.
func BuildTagDataFrame(rssiTenths int16, pcuii []byte) []byte {
	data := make([]byte, 0, 5+len(pcuii))
	data = append(data, 0x10,
		byte(uint16(rssiTenths)>>8), byte(uint16(rssiTenths)),
		0x00, byte(len(pcuii)))
	data = append(data, pcuii...)
	return BuildFrame(RespInventoryData, data)
}

// BuildWriteAck creates a tag write acknowledgment
func BuildWriteAck() []byte {
	return BuildFrame(RespAck, []byte{0x16})
}

// BuildBuzzerAck creates a buzzer acknowledgment
func BuildBuzzerAck() []byte {
	return BuildFrame(RespAck, []byte{0x01})
}

// Common PC+UII values for testing
var (
	// TestTagA is a 96-bit EPC with its protocol control word
	TestTagA = []byte{
		0x30, 0x00,
		0xE2, 0x80, 0x68, 0x94, 0x00, 0x00,
		0x50, 0x2E, 0x7C, 0x5A, 0x4B, 0x1A,
	}

	// TestTagB is a second distinct 96-bit EPC
	TestTagB = []byte{
		0x30, 0x00,
		0xE2, 0x00, 0x47, 0x0F, 0x12, 0x60,
		0x60, 0x24, 0x01, 0x09, 0x28, 0x3D,
	}
)
