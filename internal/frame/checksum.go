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

package frame

// CalculateChecksum returns the arithmetic sum of data truncated to one
// byte. The device applies this over STX through ETX inclusive.
func CalculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// VerifyChecksum checks the SUM byte of a complete frame against the
// sum of the covered span. The frame must already be structurally
// complete (header, data, footer all present).
func VerifyChecksum(frm []byte) bool {
	if len(frm) < HeaderLength+FooterLength {
		return false
	}
	covered := len(frm) - 2 // everything before SUM and CR
	return CalculateChecksum(frm[:covered]) == frm[covered]
}
