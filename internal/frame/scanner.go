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

// Scanner reassembles frames from a raw byte stream. The stream has no
// message boundaries, so the scanner buffers partial data across reads
// and uses the frame's own STX/length/ETX/CR markers as the only
// segmentation signal. One Scanner belongs to one connection for the
// connection's lifetime.
//
// The scanner is purely structural: it does not verify the SUM byte.
// Checksum validation happens when the frame is decoded, so corruption
// is reported to the caller instead of silently resynchronizing past it.
type Scanner struct {
	buf []byte
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Feed appends raw bytes received from the connection.
func (s *Scanner) Feed(p []byte) {
	s.buf = append(s.buf, p...)
}

// Next pops the next structurally complete frame from the buffer, or
// returns nil if more bytes are needed. Leading bytes that are not STX
// are discarded as line noise. An STX-led span whose ETX or CR is not
// at the offset implied by the length byte is slid forward by one byte
// so the scanner resynchronizes on the next candidate STX.
func (s *Scanner) Next() []byte {
	for {
		s.discardNoise()
		if len(s.buf) < HeaderLength {
			return nil
		}

		dataLen := int(s.buf[LengthOffset])
		total := TotalLength(dataLen)
		if len(s.buf) < total {
			return nil
		}

		if s.buf[total-1] != CR || s.buf[HeaderLength+dataLen] != ETX {
			// Not a real frame boundary; skip this STX candidate.
			s.buf = s.buf[1:]
			continue
		}

		frm := make([]byte, total)
		copy(frm, s.buf[:total])
		s.buf = s.buf[total:]
		return frm
	}
}

// Pending reports how many buffered bytes are waiting to form a frame.
func (s *Scanner) Pending() int {
	return len(s.buf)
}

// Reset drops any partially accumulated bytes. Used when the connection
// is reopened and stale data must not bleed into the new session.
func (s *Scanner) Reset() {
	s.buf = s.buf[:0]
}

func (s *Scanner) discardNoise() {
	i := 0
	for i < len(s.buf) && s.buf[i] != STX {
		i++
	}
	if i > 0 {
		s.buf = s.buf[i:]
	}
}
