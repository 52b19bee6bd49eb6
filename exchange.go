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
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Exchange sends one command and collects its response. See
// ExchangeContext.
func (d *Device) Exchange(cmd byte, data []byte) (*Response, error) {
	return d.ExchangeContext(context.Background(), cmd, data)
}

// ExchangeContext sends one command frame and reads response frames
// until a terminal acknowledgment arrives.
//
// Intermediate data frames (as produced by inventory) are collected
// into Response.Data in arrival order. An ACK completes the exchange;
// a NACK fails it with a *NackError carrying the device's error code.
// The whole exchange shares a single deadline derived from the device
// timeout and, if earlier, the context deadline.
//
// Exchange never retries on its own. Wrap calls in ExchangeWithRetry
// when transient-failure retry is wanted.
func (d *Device) ExchangeContext(ctx context.Context, cmd byte, data []byte) (*Response, error) {
	if !d.exchanging.CompareAndSwap(false, true) {
		return nil, ErrExchangeInProgress
	}
	defer d.exchanging.Store(false)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("exchange aborted: %w", err)
	}

	raw, err := EncodeFrame(cmd, data)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(d.config.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	d.logger.Debug("sending command",
		zap.String("frame", hex.EncodeToString(raw)))

	if err := d.transport.WriteFrame(raw); err != nil {
		return nil, fmt.Errorf("failed to send command 0x%02X: %w", cmd, err)
	}

	resp := &Response{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("exchange aborted: %w", err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, NewTimeoutError("Exchange", "")
		}
		if err := d.transport.SetTimeout(remaining); err != nil {
			return nil, fmt.Errorf("failed to arm read deadline: %w", err)
		}

		rawResp, err := d.transport.ReadFrame()
		if err != nil {
			return nil, err
		}

		frm, err := DecodeFrame(rawResp)
		if err != nil {
			return nil, err
		}

		kind := Classify(frm)
		d.logger.Debug("received frame",
			zap.String("frame", hex.EncodeToString(rawResp)),
			zap.Stringer("kind", kind))

		switch kind {
		case KindAck:
			resp.Ack = frm
			return resp, nil
		case KindNack:
			return nil, nackError(frm)
		case KindData:
			resp.Data = append(resp.Data, frm)
		}
	}
}
