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
	"fmt"

	"go.uber.org/zap"
)

// BuzzerSound selects one of the reader's buzzer patterns.
type BuzzerSound byte

const (
	// BuzzerLongBeep is the single long confirmation beep.
	BuzzerLongBeep BuzzerSound = 0x00
	// BuzzerTripleBeep is three short beeps.
	BuzzerTripleBeep BuzzerSound = 0x01

	// maxBuzzerSound is the highest pattern number the device defines.
	maxBuzzerSound BuzzerSound = 0x08
)

// BuzzerContext sounds the selected buzzer pattern and waits for the
// reader's acknowledgment.
func (d *Device) BuzzerContext(ctx context.Context, sound BuzzerSound) error {
	if sound > maxBuzzerSound {
		return fmt.Errorf("%w: buzzer sound 0x%02X exceeds 0x%02X",
			ErrInvalidParameter, byte(sound), byte(maxBuzzerSound))
	}

	data := []byte{buzzerReplyRequested, byte(sound)}
	if _, err := d.ExchangeContext(ctx, cmdBuzzer, data); err != nil {
		return fmt.Errorf("buzzer command failed: %w", err)
	}
	return nil
}

// SignalInventoryResult sounds the tone matching an inventory outcome:
// a long beep when tags were found, a triple beep when none were.
// Failures are logged and swallowed so a broken buzzer never fails the
// surrounding run.
func SignalInventoryResult(ctx context.Context, device *Device, found bool) {
	sound := BuzzerTripleBeep
	if found {
		sound = BuzzerLongBeep
	}
	if err := device.BuzzerContext(ctx, sound); err != nil {
		device.logger.Warn("buzzer signal failed", zap.Error(err))
	}
}
