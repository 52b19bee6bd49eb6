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

import (
	"context"
)

// ROMVersion reads the reader's firmware version
func (d *Device) ROMVersion() (*ROMVersion, error) {
	return d.ROMVersionContext(context.Background())
}

// SetCommandMode switches the reader into host-driven command mode
func (d *Device) SetCommandMode() error {
	return d.SetCommandModeContext(context.Background())
}

// ReadPower reads the configured transmit output power in dBm
func (d *Device) ReadPower() (float64, error) {
	return d.ReadPowerContext(context.Background())
}

// ReadChannel reads the active frequency channel
func (d *Device) ReadChannel() (*Channel, error) {
	return d.ReadChannelContext(context.Background())
}

// InventoryParams reads the inventory parameter block
func (d *Device) InventoryParams() ([]byte, error) {
	return d.InventoryParamsContext(context.Background())
}

// SetInventoryParams writes an 8-byte inventory parameter block
func (d *Device) SetInventoryParams(params []byte) error {
	return d.SetInventoryParamsContext(context.Background(), params)
}

// WriteTag issues a tag memory write with the given command block
func (d *Device) WriteTag(block []byte) error {
	return d.WriteTagContext(context.Background(), block)
}

// Inventory runs one inventory round
func (d *Device) Inventory() (*RoundResult, error) {
	return d.InventoryContext(context.Background())
}

// Buzzer sounds the reader's buzzer
func (d *Device) Buzzer(sound BuzzerSound) error {
	return d.BuzzerContext(context.Background(), sound)
}
