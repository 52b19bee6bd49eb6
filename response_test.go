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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeTestFrame(t *testing.T, cmd byte, data []byte) *Frame {
	t.Helper()

	raw, err := EncodeFrame(cmd, data)
	require.NoError(t, err)
	frm, err := DecodeFrame(raw)
	require.NoError(t, err)
	return frm
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		cmd  byte
		want FrameKind
	}{
		{name: "acknowledgment", cmd: respAck, data: []byte{0x10}, want: KindAck},
		{name: "negative acknowledgment", cmd: respNack, data: []byte{0x10, 0x04}, want: KindNack},
		{name: "inventory tag data", cmd: respInventoryData, data: []byte{0x10, 0xFD, 0x30, 0x00, 0x00}, want: KindData},
		{name: "unknown command defaults to data", cmd: 0x77, data: nil, want: KindData},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frm := decodeTestFrame(t, tt.cmd, tt.data)
			assert.Equal(t, tt.want, Classify(frm))
		})
	}
}

func TestFrameKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ACK", KindAck.String())
	assert.Equal(t, "NACK", KindNack.String())
	assert.Equal(t, "DATA", KindData.String())
	assert.Equal(t, "FrameKind(42)", FrameKind(42).String())
}

func TestNackErrorCarriesDeviceCode(t *testing.T) {
	t.Parallel()

	frm := decodeTestFrame(t, respNack, []byte{0x10, NackCodeNoTagReply})

	err := nackError(frm)
	require.Error(t, err)

	var nack *NackError
	require.ErrorAs(t, err, &nack)
	assert.Equal(t, NackCodeNoTagReply, nack.Code)
	assert.Contains(t, nack.Error(), "no tag response")
}

// A NACK too short to carry an error code is malformed; the code is
// never guessed.
func TestNackWithoutCodeIsMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty payload", data: nil},
		{name: "detail only", data: []byte{0x10}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frm := decodeTestFrame(t, respNack, tt.data)
			err := nackError(frm)
			require.ErrorIs(t, err, ErrFrameFormat)

			_, isNack := IsNack(err)
			assert.False(t, isNack)
		})
	}
}
