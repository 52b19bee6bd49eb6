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

package testing

import (
	"github.com/rftools/go-utr/internal/frame"
)

// VirtualTag is one simulated tag in a VirtualReader's antenna field.
type VirtualTag struct {
	// PCUII is the protocol control word plus EPC the tag reports.
	PCUII []byte
	// RSSITenths is the simulated signal strength in tenths of dBm.
	RSSITenths int16
}

// VirtualReader emulates the command handling of a UTR reader. Tests
// feed it the raw frames a transport would write and get back the raw
// frames the reader would answer with, so the same scripted device can
// sit behind a mock transport or a real network connection.
type VirtualReader struct {
	// ROMVersion is the firmware string reported to the version probe.
	ROMVersion string
	// Params is the 8-byte inventory parameter block.
	Params []byte
	// Tags are the tags currently in the field, reported in order by
	// every inventory round.
	Tags []VirtualTag
	// PowerTenths is the configured output power in tenths of dBm.
	PowerTenths uint16
	// Channel is the active frequency channel number.
	Channel byte
	// NackNext, when nonzero, makes the next command fail with that
	// device error code.
	NackNext byte
	// CommandMode records whether the mode switch command was seen.
	CommandMode bool
}

// NewVirtualReader returns a reader with plausible factory settings
// and an empty field.
func NewVirtualReader() *VirtualReader {
	return &VirtualReader{
		ROMVersion:  "UTR-S201 v1.27",
		PowerTenths: 270,
		Channel:     5,
		Params:      []byte{0x00, 0x81, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	}
}

// AddTag places a tag in the simulated field.
func (v *VirtualReader) AddTag(pcuii []byte, rssiTenths int16) {
	v.Tags = append(v.Tags, VirtualTag{PCUII: pcuii, RSSITenths: rssiTenths})
}

// ClearField removes every tag from the simulated field.
func (v *VirtualReader) ClearField() {
	v.Tags = nil
}

// Respond maps one written command frame onto the reply frames the
// reader would send, in wire order. The input only needs the header
// intact; checksum validation is the job of the code under test, not
// the simulator.
func (v *VirtualReader) Respond(written []byte) [][]byte {
	if len(written) < frame.HeaderLength+frame.FooterLength {
		return [][]byte{BuildNackFrame(0x00, 0x44)}
	}

	cmd := written[frame.CommandOffset]
	data := written[frame.DataOffset : len(written)-frame.FooterLength]

	if v.NackNext != 0 {
		code := v.NackNext
		v.NackNext = 0
		return [][]byte{BuildNackFrame(detailOf(data), code)}
	}

	switch cmd {
	case CmdROMVersion:
		return [][]byte{BuildROMVersionAck(v.ROMVersion)}
	case CmdModeSet:
		v.CommandMode = true
		return [][]byte{BuildCommandModeAck()}
	case CmdBuzzer:
		return [][]byte{BuildBuzzerAck()}
	case CmdUHF:
		return v.respondUHF(data)
	default:
		return [][]byte{BuildNackFrame(detailOf(data), 0x07)}
	}
}

func (v *VirtualReader) respondUHF(data []byte) [][]byte {
	if len(data) == 0 {
		return [][]byte{BuildNackFrame(0x00, 0x44)}
	}

	switch data[0] {
	case 0x10: // inventory
		replies := make([][]byte, 0, len(v.Tags)+1)
		for _, tag := range v.Tags {
			replies = append(replies, BuildTagDataFrame(tag.RSSITenths, tag.PCUII))
		}
		return append(replies, BuildInventoryAck(uint16(len(v.Tags))))
	case 0x43: // read setting
		if len(data) < 2 {
			return [][]byte{BuildNackFrame(data[0], 0x44)}
		}
		switch data[1] {
		case 0x01:
			return [][]byte{BuildPowerAck(v.PowerTenths)}
		case 0x02:
			return [][]byte{BuildChannelAck(v.Channel)}
		default:
			return [][]byte{BuildNackFrame(data[0], 0x44)}
		}
	case 0x41: // get inventory params
		return [][]byte{BuildInventoryParamsAck(v.Params)}
	case 0x30: // set inventory params
		if len(data) != 1+len(v.Params) {
			return [][]byte{BuildNackFrame(data[0], 0x44)}
		}
		v.Params = append([]byte(nil), data[1:]...)
		return [][]byte{BuildSetParamAck()}
	case 0x16: // tag write
		return [][]byte{BuildWriteAck()}
	default:
		return [][]byte{BuildNackFrame(data[0], 0x07)}
	}
}

func detailOf(data []byte) byte {
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
