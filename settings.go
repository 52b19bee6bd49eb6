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
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// ROMVersion holds the firmware identification reported by the reader.
type ROMVersion struct {
	// Version is the printable ASCII form of the version blob, empty
	// when the reply contains non-printable bytes.
	Version string
	// Raw is the full version blob after the detail byte.
	Raw []byte
}

// String returns the printable version, falling back to hex.
func (v *ROMVersion) String() string {
	if v.Version != "" {
		return v.Version
	}
	return hex.EncodeToString(v.Raw)
}

// ROMVersionContext reads the reader's firmware version. This doubles
// as the link probe: any answer proves the framing and the reader are
// alive.
func (d *Device) ROMVersionContext(ctx context.Context) (*ROMVersion, error) {
	resp, err := d.ExchangeContext(ctx, cmdROMVersion, romVersionData)
	if err != nil {
		return nil, err
	}

	data := resp.Ack.Data
	if len(data) < 1 || data[0] != detailROMVersion {
		return nil, fmt.Errorf("%w: ROM version reply without detail echo", ErrFrameFormat)
	}

	raw := make([]byte, len(data)-1)
	copy(raw, data[1:])
	return &ROMVersion{Raw: raw, Version: printableString(raw)}, nil
}

// printableString returns raw as a string when every byte is printable
// ASCII, otherwise "".
func printableString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	for _, b := range raw {
		if b < 0x20 || b > 0x7E {
			return ""
		}
	}
	return string(raw)
}

// SetCommandModeContext switches the reader out of autonomous reading
// into host-driven command mode. Inventory commands are only honored
// in command mode.
func (d *Device) SetCommandModeContext(ctx context.Context) error {
	if _, err := d.ExchangeContext(ctx, cmdModeSet, commandModeData); err != nil {
		return fmt.Errorf("failed to set command mode: %w", err)
	}
	return nil
}

// ReadPowerContext reads the configured transmit output power in dBm.
// The reader reports tenths of dBm as a little-endian 16-bit value.
func (d *Device) ReadPowerContext(ctx context.Context) (float64, error) {
	resp, err := d.ExchangeContext(ctx, cmdUHF,
		[]byte{uhfSubReadSetting, settingOutputPower, 0x00})
	if err != nil {
		return 0, err
	}

	data := resp.Ack.Data
	if len(data) < 5 {
		return 0, fmt.Errorf("%w: output power reply too short (%d bytes)", ErrFrameFormat, len(data))
	}
	tenths := binary.LittleEndian.Uint16(data[3:5])
	return float64(tenths) / 10, nil
}

// Channel identifies one frequency channel of the 916-923 MHz band
// plan.
type Channel struct {
	// FrequencyMHz is the carrier frequency, 0 when Number is outside
	// the band plan.
	FrequencyMHz float64
	// Number is the 1-based channel number reported by the reader.
	Number byte
}

func (c Channel) String() string {
	if c.FrequencyMHz == 0 {
		return fmt.Sprintf("CH%d", c.Number)
	}
	return fmt.Sprintf("CH%d (%.1f MHz)", c.Number, c.FrequencyMHz)
}

// channelFrequencyMHz maps a channel number onto the 38-channel band
// plan: CH1 = 916.0 MHz, 200 kHz spacing, CH38 = 923.4 MHz.
func channelFrequencyMHz(number byte) float64 {
	if number < 1 || number > 38 {
		return 0
	}
	return 916.0 + 0.2*float64(number-1)
}

// ReadChannelContext reads the active frequency channel.
func (d *Device) ReadChannelContext(ctx context.Context) (*Channel, error) {
	resp, err := d.ExchangeContext(ctx, cmdUHF,
		[]byte{uhfSubReadSetting, settingFreqChannel, 0x00})
	if err != nil {
		return nil, err
	}

	data := resp.Ack.Data
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: frequency channel reply too short (%d bytes)", ErrFrameFormat, len(data))
	}
	number := data[3]
	return &Channel{Number: number, FrequencyMHz: channelFrequencyMHz(number)}, nil
}

// InventoryParamsContext reads the reader's inventory parameter block
// (session, Q value and related Gen2 settings) as raw bytes.
func (d *Device) InventoryParamsContext(ctx context.Context) ([]byte, error) {
	resp, err := d.ExchangeContext(ctx, cmdUHF, []byte{uhfSubGetParam, 0x00})
	if err != nil {
		return nil, err
	}

	data := resp.Ack.Data
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: inventory parameter reply too short (%d bytes)", ErrFrameFormat, len(data))
	}
	params := make([]byte, len(data)-1)
	copy(params, data[1:])
	return params, nil
}

// DefaultInventoryParams returns the canonical inventory parameter
// block from the vendor sample.
func DefaultInventoryParams() []byte {
	params := make([]byte, len(defaultInventoryParamBlock))
	copy(params, defaultInventoryParamBlock)
	return params
}

// SetInventoryParamsContext writes an 8-byte inventory parameter
// block. Use DefaultInventoryParams for the vendor defaults.
func (d *Device) SetInventoryParamsContext(ctx context.Context, params []byte) error {
	if len(params) != len(defaultInventoryParamBlock) {
		return fmt.Errorf("%w: inventory parameter block must be %d bytes, got %d",
			ErrInvalidParameter, len(defaultInventoryParamBlock), len(params))
	}

	data := make([]byte, 0, 1+len(params))
	data = append(data, uhfSubSetParam)
	data = append(data, params...)
	if _, err := d.ExchangeContext(ctx, cmdUHF, data); err != nil {
		return fmt.Errorf("failed to set inventory parameters: %w", err)
	}
	return nil
}

// DefaultWriteTagBlock returns the canonical single-word tag write
// payload from the vendor command table.
func DefaultWriteTagBlock() []byte {
	block := make([]byte, len(defaultWriteTagBlock))
	copy(block, defaultWriteTagBlock)
	return block
}

// WriteTagContext issues a tag memory write with the given 7-byte
// command block (bank/address/word selection and data, in the vendor
// table layout). The addressed tag must be in the antenna field.
func (d *Device) WriteTagContext(ctx context.Context, block []byte) error {
	if len(block) != len(defaultWriteTagBlock) {
		return fmt.Errorf("%w: write block must be %d bytes, got %d",
			ErrInvalidParameter, len(defaultWriteTagBlock), len(block))
	}

	data := make([]byte, 0, 1+len(block))
	data = append(data, uhfSubWrite)
	data = append(data, block...)
	if _, err := d.ExchangeContext(ctx, cmdUHF, data); err != nil {
		return fmt.Errorf("tag write failed: %w", err)
	}
	return nil
}
