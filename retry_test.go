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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canned "github.com/rftools/go-utr/internal/testing"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(5), func() error {
		calls++
		if calls < 3 {
			return NewTimeoutError("ReadFrame", "mock")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	calls := 0
	nack := &NackError{Code: NackCodeNoTagReply}
	err := RetryWithConfig(context.Background(), fastRetryConfig(5), func() error {
		calls++
		return nack
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	code, ok := IsNack(err)
	require.True(t, ok)
	assert.Equal(t, NackCodeNoTagReply, code)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return NewTimeoutError("ReadFrame", "mock")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrTransportTimeout)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestRetryAbortsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithConfig(ctx, fastRetryConfig(3), func() error {
		calls++
		return NewTimeoutError("ReadFrame", "mock")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestExchangeWithRetryRecovers(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	device.SetRetryConfig(fastRetryConfig(3))
	require.NoError(t, device.SetTimeout(50*time.Millisecond))

	// First attempt gets silence, second gets the reply.
	mock.QueueResponse(cmdROMVersion)
	mock.QueueResponse(cmdROMVersion, canned.BuildROMVersionAck("v1.27"))

	resp, err := ExchangeWithRetry(context.Background(), device, cmdROMVersion, romVersionData)
	require.NoError(t, err)
	require.NotNil(t, resp.Ack)
	assert.Equal(t, 2, mock.GetCallCount(cmdROMVersion))
}

func TestExchangeWithRetryStopsOnNack(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	device.SetRetryConfig(fastRetryConfig(3))
	mock.SetResponse(cmdUHF, canned.BuildNackFrame(detailInventory, NackCodeCommand))

	_, err := ExchangeWithRetry(context.Background(), device, cmdUHF, []byte{uhfSubInventory})
	require.Error(t, err)
	assert.Equal(t, 1, mock.GetCallCount(cmdUHF))
}

func TestTransportWithRetryWriteRecovers(t *testing.T) {
	t.Parallel()

	flaky := &flakyTransport{failWrites: 2}
	wrapped := NewTransportWithRetry(flaky, fastRetryConfig(5))

	raw, err := EncodeFrame(cmdROMVersion, romVersionData)
	require.NoError(t, err)
	require.NoError(t, wrapped.WriteFrame(raw))
	assert.Equal(t, 3, flaky.writes)
}

// flakyTransport fails the first failWrites writes with a transient
// error, then succeeds.
type flakyTransport struct {
	failWrites int
	writes     int
}

var _ Transport = (*flakyTransport)(nil)

func (f *flakyTransport) WriteFrame([]byte) error {
	f.writes++
	if f.writes <= f.failWrites {
		return NewTransportError("WriteFrame", "flaky", ErrTransportWrite, ErrorTypeTransient)
	}
	return nil
}

func (*flakyTransport) ReadFrame() ([]byte, error) {
	return nil, NewTimeoutError("ReadFrame", "flaky")
}

func (*flakyTransport) Close() error { return nil }

func (*flakyTransport) SetTimeout(time.Duration) error { return nil }

func (*flakyTransport) IsConnected() bool { return true }

func (*flakyTransport) Type() TransportType { return TransportMock }
