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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canned "github.com/rftools/go-utr/internal/testing"
)

// virtualTransport puts a VirtualReader behind the Transport interface
// so the whole command surface can be exercised against one simulated
// device.
type virtualTransport struct {
	reader *canned.VirtualReader
	queue  [][]byte
	closed bool
}

var _ Transport = (*virtualTransport)(nil)

func (v *virtualTransport) WriteFrame(data []byte) error {
	if v.closed {
		return NewClosedError("WriteFrame", "virtual")
	}
	v.queue = append(v.queue, v.reader.Respond(data)...)
	return nil
}

func (v *virtualTransport) ReadFrame() ([]byte, error) {
	if v.closed {
		return nil, NewClosedError("ReadFrame", "virtual")
	}
	if len(v.queue) == 0 {
		return nil, NewTimeoutError("ReadFrame", "virtual")
	}
	frm := v.queue[0]
	v.queue = v.queue[1:]
	return frm, nil
}

func (v *virtualTransport) Close() error {
	v.closed = true
	return nil
}

func (*virtualTransport) SetTimeout(time.Duration) error { return nil }

func (v *virtualTransport) IsConnected() bool { return !v.closed }

func (*virtualTransport) Type() TransportType { return TransportMock }

// The full run sequence of the reference client: probe, mode switch,
// read settings, multi-round inventory, buzzer.
func TestFullRunSequence(t *testing.T) {
	t.Parallel()

	reader := canned.NewVirtualReader()
	reader.AddTag(canned.TestTagA, -720)
	reader.AddTag(canned.TestTagB, -635)

	device, err := New(&virtualTransport{reader: reader})
	require.NoError(t, err)
	defer func() { require.NoError(t, device.Close()) }()

	ctx := context.Background()

	require.NoError(t, device.InitContext(ctx))
	assert.True(t, reader.CommandMode)
	require.NotNil(t, device.FirmwareVersion())
	assert.Equal(t, "UTR-S201 v1.27", device.FirmwareVersion().String())

	power, err := device.ReadPowerContext(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 27.0, power, 0.001)

	channel, err := device.ReadChannelContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(5), channel.Number)
	assert.InDelta(t, 916.8, channel.FrequencyMHz, 0.001)

	params, err := device.InventoryParamsContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultInventoryParams(), params)

	result, err := RunInventory(ctx, device, &InventoryConfig{
		Rounds:       5,
		RoundTimeout: time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.SuccessfulRounds)
	assert.Equal(t, 0, result.TimedOutRounds)
	assert.Equal(t, 10, result.TotalTags)
	assert.Equal(t, 5, result.PerTagCounts[hex.EncodeToString(canned.TestTagA)])
	assert.Equal(t, 5, result.PerTagCounts[hex.EncodeToString(canned.TestTagB)])
	for _, round := range result.Rounds {
		assert.Len(t, round.Tags, 2)
		assert.Equal(t, 2, round.Expected)
		assert.False(t, round.CountMismatch())
	}

	SignalInventoryResult(ctx, device, result.TotalTags > 0)
}

// A device NACK injected mid-run must cost exactly one round.
func TestFullRunSurvivesInjectedNack(t *testing.T) {
	t.Parallel()

	reader := canned.NewVirtualReader()
	reader.AddTag(canned.TestTagA, -700)

	device, err := New(&virtualTransport{reader: reader})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, device.InitContext(ctx))

	result, err := RunInventory(ctx, device, &InventoryConfig{
		Rounds:       3,
		RoundTimeout: time.Second,
		OnRound: func(round int, _ *RoundResult, _ error) {
			if round == 1 {
				reader.NackNext = NackCodeUHFIC
			}
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessfulRounds)
	assert.Equal(t, 2, result.TotalTags)
	assert.Empty(t, result.Rounds[1].Tags)
}

func TestFullRunEmptyField(t *testing.T) {
	t.Parallel()

	device, err := New(&virtualTransport{reader: canned.NewVirtualReader()})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, device.InitContext(ctx))

	result, err := RunInventory(ctx, device, &InventoryConfig{
		Rounds:       2,
		RoundTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalTags)
	assert.Equal(t, 2, result.SuccessfulRounds)
	assert.Empty(t, result.PerTagCounts)

	SignalInventoryResult(ctx, device, false)
}
