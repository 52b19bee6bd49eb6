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

import "fmt"

// FrameKind labels a validated response frame.
type FrameKind int

const (
	// KindData is a data-bearing response, such as an inventory tag
	// report.
	KindData FrameKind = iota
	// KindAck is a positive acknowledgment terminating an exchange.
	KindAck
	// KindNack is a negative acknowledgment carrying a device error
	// code.
	KindNack
)

func (k FrameKind) String() string {
	switch k {
	case KindAck:
		return "ACK"
	case KindNack:
		return "NACK"
	case KindData:
		return "DATA"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// Classify labels a validated frame by its command byte. The device
// answers every command with zero or more data frames followed by a
// terminal ACK or NACK.
func Classify(f *Frame) FrameKind {
	switch f.Command {
	case respAck:
		return KindAck
	case respNack:
		return KindNack
	default:
		return KindData
	}
}

// Response is the outcome of one successful exchange: the data frames
// the device streamed, in arrival order, followed by the terminal ACK.
type Response struct {
	Ack  *Frame
	Data []*Frame
}

// nackError extracts the device error code from a NACK frame. The code
// sits in the second data byte, after the echoed detail; a NACK too
// short to carry one is malformed rather than a rejection with a
// defaulted code.
func nackError(f *Frame) error {
	if len(f.Data) < 2 {
		return fmt.Errorf("NACK with %d data bytes carries no error code: %w",
			len(f.Data), ErrFrameFormat)
	}
	return &NackError{Code: f.Data[1]}
}
