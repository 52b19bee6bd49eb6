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
	"fmt"

	"github.com/rftools/go-utr/internal/frame"
)

// Frame is one complete, checksum-validated protocol message. A Frame
// is only ever constructed by DecodeFrame, so its fields can be trusted
// without re-validation.
type Frame struct {
	Data    []byte
	raw     []byte
	Command byte
}

// Detail returns the first data byte, which the device uses to echo the
// sub-operation a response belongs to. Zero if the frame carries no data.
func (f *Frame) Detail() byte {
	if len(f.Data) == 0 {
		return 0
	}
	return f.Data[0]
}

// Raw returns the frame's wire bytes.
func (f *Frame) Raw() []byte {
	return f.raw
}

// EncodeFrame builds the wire bytes for a command:
//
//	STX ADDR CMD LEN DATA[LEN] ETX SUM CR
//
// with SUM the one-byte arithmetic sum of STX through ETX. The encoding
// is deterministic; the only rejected input is a payload too large for
// the one-byte length field.
func EncodeFrame(cmd byte, data []byte) ([]byte, error) {
	if len(data) > frame.MaxDataLength {
		return nil, fmt.Errorf("encode command 0x%02X: %w", cmd, ErrDataTooLarge)
	}

	frm := make([]byte, 0, frame.TotalLength(len(data)))
	frm = append(frm, frame.STX, frame.Address, cmd, byte(len(data)))
	frm = append(frm, data...)
	frm = append(frm, frame.ETX)
	frm = append(frm, frame.CalculateChecksum(frm))
	frm = append(frm, frame.CR)
	return frm, nil
}

// DecodeFrame validates raw wire bytes and promotes them to a Frame.
// It fails with ErrFrameFormat when the header layout is wrong, with
// ErrFrameTermination when the end marker or terminator is missing at
// the offset implied by the length byte, and with ErrChecksumMismatch
// when the SUM byte disagrees with the covered span.
func DecodeFrame(raw []byte) (*Frame, error) {
	if len(raw) < frame.HeaderLength+frame.FooterLength {
		return nil, fmt.Errorf("frame too short (%d bytes): %w", len(raw), ErrFrameFormat)
	}
	if raw[0] != frame.STX {
		return nil, fmt.Errorf("start marker 0x%02X: %w", raw[0], ErrFrameFormat)
	}
	if raw[1] != frame.Address {
		return nil, fmt.Errorf("address byte 0x%02X: %w", raw[1], ErrFrameFormat)
	}

	dataLen := int(raw[frame.LengthOffset])
	if len(raw) != frame.TotalLength(dataLen) {
		return nil, fmt.Errorf("declared length %d but frame has %d bytes: %w",
			dataLen, len(raw), ErrFrameFormat)
	}
	if raw[frame.HeaderLength+dataLen] != frame.ETX {
		return nil, fmt.Errorf("end marker missing: %w", ErrFrameTermination)
	}
	if raw[len(raw)-1] != frame.CR {
		return nil, fmt.Errorf("terminator missing: %w", ErrFrameTermination)
	}
	if !frame.VerifyChecksum(raw) {
		want := frame.CalculateChecksum(raw[:len(raw)-2])
		return nil, fmt.Errorf("sum byte 0x%02X, computed 0x%02X: %w",
			raw[len(raw)-2], want, ErrChecksumMismatch)
	}

	data := make([]byte, dataLen)
	copy(data, raw[frame.DataOffset:frame.DataOffset+dataLen])
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)

	return &Frame{
		Command: raw[frame.CommandOffset],
		Data:    data,
		raw:     rawCopy,
	}, nil
}
