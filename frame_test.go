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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Command frames from the vendor protocol reference, byte for byte.
func TestEncodeFrameVendorCommandTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want []byte
		cmd  byte
	}{
		{
			name: "ROM version check",
			cmd:  cmdROMVersion,
			data: []byte{0x90},
			want: []byte{0x02, 0x00, 0x4F, 0x01, 0x90, 0x03, 0xE5, 0x0D},
		},
		{
			name: "command mode set",
			cmd:  cmdModeSet,
			data: []byte{0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00},
			want: []byte{0x02, 0x00, 0x4E, 0x07, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x03, 0x6A, 0x0D},
		},
		{
			name: "inventory",
			cmd:  cmdUHF,
			data: []byte{0x10},
			want: []byte{0x02, 0x00, 0x55, 0x01, 0x10, 0x03, 0x6B, 0x0D},
		},
		{
			name: "get inventory parameters",
			cmd:  cmdUHF,
			data: []byte{0x41, 0x00},
			want: []byte{0x02, 0x00, 0x55, 0x02, 0x41, 0x00, 0x03, 0x9D, 0x0D},
		},
		{
			name: "set inventory parameters",
			cmd:  cmdUHF,
			data: []byte{0x30, 0x00, 0x81, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: []byte{0x02, 0x00, 0x55, 0x09, 0x30, 0x00, 0x81, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0x14, 0x0D},
		},
		{
			name: "read output power",
			cmd:  cmdUHF,
			data: []byte{0x43, 0x01, 0x00},
			want: []byte{0x02, 0x00, 0x55, 0x03, 0x43, 0x01, 0x00, 0x03, 0xA1, 0x0D},
		},
		{
			name: "read frequency channel",
			cmd:  cmdUHF,
			data: []byte{0x43, 0x02, 0x00},
			want: []byte{0x02, 0x00, 0x55, 0x03, 0x43, 0x02, 0x00, 0x03, 0xA2, 0x0D},
		},
		{
			name: "tag write",
			cmd:  cmdUHF,
			data: []byte{0x16, 0x01, 0x00, 0x00, 0x00, 0x02, 0x04, 0x56},
			want: []byte{0x02, 0x00, 0x55, 0x08, 0x16, 0x01, 0x00, 0x00, 0x00, 0x02, 0x04, 0x56, 0x03, 0xD5, 0x0D},
		},
		{
			name: "buzzer long beep",
			cmd:  cmdBuzzer,
			data: []byte{0x01, 0x00},
			want: []byte{0x02, 0x00, 0x42, 0x02, 0x01, 0x00, 0x03, 0x4A, 0x0D},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EncodeFrame(tt.cmd, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		cmd  byte
	}{
		{name: "empty payload", cmd: 0x4F, data: nil},
		{name: "single byte", cmd: 0x55, data: []byte{0x10}},
		{name: "payload containing frame markers", cmd: 0x55, data: []byte{0x02, 0x03, 0x0D, 0x02}},
		{name: "maximum payload", cmd: 0x6C, data: bytes.Repeat([]byte{0xA5}, 255)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := EncodeFrame(tt.cmd, tt.data)
			require.NoError(t, err)

			frm, err := DecodeFrame(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, frm.Command)
			if len(tt.data) == 0 {
				assert.Empty(t, frm.Data)
			} else {
				assert.Equal(t, tt.data, frm.Data)
			}
			assert.Equal(t, raw, frm.Raw())
		})
	}
}

func TestEncodeFrameRejectsOversizedData(t *testing.T) {
	t.Parallel()

	_, err := EncodeFrame(0x55, make([]byte, 256))
	require.ErrorIs(t, err, ErrDataTooLarge)
}

func TestDecodeFrameErrors(t *testing.T) {
	t.Parallel()

	valid, err := EncodeFrame(cmdROMVersion, []byte{0x90})
	require.NoError(t, err)

	corrupt := func(offset int, value byte) []byte {
		raw := append([]byte(nil), valid...)
		raw[offset] = value
		return raw
	}

	tests := []struct {
		wantErr error
		name    string
		raw     []byte
	}{
		{name: "too short", raw: valid[:6], wantErr: ErrFrameFormat},
		{name: "bad start marker", raw: corrupt(0, 0xFF), wantErr: ErrFrameFormat},
		{name: "bad address byte", raw: corrupt(1, 0x01), wantErr: ErrFrameFormat},
		{name: "length disagrees with byte count", raw: corrupt(3, 0x05), wantErr: ErrFrameFormat},
		{name: "missing end marker", raw: corrupt(5, 0x00), wantErr: ErrFrameTermination},
		{name: "missing terminator", raw: corrupt(7, 0x00), wantErr: ErrFrameTermination},
		{name: "bad checksum", raw: corrupt(6, 0xE6), wantErr: ErrChecksumMismatch},
		{name: "corrupted payload", raw: corrupt(4, 0x91), wantErr: ErrChecksumMismatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, decodeErr := DecodeFrame(tt.raw)
			require.ErrorIs(t, decodeErr, tt.wantErr)
		})
	}
}

// Every single-bit corruption of an encoded frame must be caught. Bits
// in the command and payload bytes surface as a checksum mismatch;
// bits in the structural bytes surface as format or termination
// failures. None may decode successfully.
func TestDecodeFrameSingleBitCorruption(t *testing.T) {
	t.Parallel()

	valid, err := EncodeFrame(cmdUHF, []byte{0x43, 0x01, 0x00})
	require.NoError(t, err)

	for offset := range valid {
		for bit := 0; bit < 8; bit++ {
			raw := append([]byte(nil), valid...)
			raw[offset] ^= 1 << bit

			_, decodeErr := DecodeFrame(raw)
			require.Error(t, decodeErr,
				"flip of bit %d at offset %d decoded successfully", bit, offset)
		}
	}

	// Checksum sensitivity specifically: corruption in the covered
	// command/payload span that leaves the structure intact must be
	// reported as a checksum mismatch.
	for _, offset := range []int{2, 4, 5, 6} {
		raw := append([]byte(nil), valid...)
		raw[offset] ^= 0x01
		_, decodeErr := DecodeFrame(raw)
		require.ErrorIs(t, decodeErr, ErrChecksumMismatch, "offset %d", offset)
	}
}

func TestFrameDetail(t *testing.T) {
	t.Parallel()

	raw, err := EncodeFrame(respAck, []byte{0x10, 0x00, 0x02, 0x00})
	require.NoError(t, err)
	frm, err := DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0x10), frm.Detail())

	raw, err = EncodeFrame(respAck, nil)
	require.NoError(t, err)
	frm, err = DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), frm.Detail())
}
