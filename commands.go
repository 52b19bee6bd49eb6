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

package utr

// UTR command codes
const (
	cmdModeSet    = 0x4E
	cmdROMVersion = 0x4F
	cmdUHF        = 0x55
	cmdBuzzer     = 0x42
)

// Response command codes
const (
	respAck           = 0x30
	respNack          = 0x31
	respInventoryData = 0x6C
)

// UHF sub-commands, carried in the first data byte of a 0x55 command
const (
	uhfSubInventory   = 0x10
	uhfSubWrite       = 0x16
	uhfSubSetParam    = 0x30
	uhfSubGetParam    = 0x41
	uhfSubReadSetting = 0x43
)

// Setting identifiers for uhfSubReadSetting
const (
	settingOutputPower = 0x01
	settingFreqChannel = 0x02
)

// Detail codes echoed in the first data byte of a response
const (
	detailROMVersion = 0x90
	detailInventory  = 0x10
)

// Buzzer response-request flag, first data byte of a 0x42 command
const (
	buzzerReplyNone      = 0x00
	buzzerReplyRequested = 0x01
)

var (
	// romVersionData selects the ROM version report.
	romVersionData = []byte{detailROMVersion}

	// commandModeData switches the reader into command mode, where it
	// scans only when told to. The seven-byte block is the mode register
	// image the vendor documents for mode 0x10.
	commandModeData = []byte{0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00}

	// defaultInventoryParamBlock is the reader's power-on inventory
	// parameter image: session flags, Q value and select mask defaults.
	defaultInventoryParamBlock = []byte{0x00, 0x81, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	// defaultWriteTagBlock is the canonical single-word tag write from the
	// vendor command table: word address 0x02, data 0x0456.
	defaultWriteTagBlock = []byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x04, 0x56}
)
