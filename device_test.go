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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	canned "github.com/rftools/go-utr/internal/testing"
)

func TestNewDeviceDefaults(t *testing.T) {
	t.Parallel()

	device, _ := newTestDevice(t)
	assert.Equal(t, 1*time.Second, device.Timeout())
	assert.Nil(t, device.FirmwareVersion())
	assert.Equal(t, TransportMock, device.Transport().Type())
}

func TestDeviceOptions(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock,
		WithTimeout(2*time.Second),
		WithLogger(zap.NewNop()),
		WithMaxRetries(5),
		WithRetryBackoff(10*time.Millisecond),
	)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, device.Timeout())
	assert.Equal(t, 5, device.config.RetryConfig.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, device.config.RetryConfig.InitialBackoff)
}

func TestDeviceInit(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	mock.SetResponse(cmdROMVersion, canned.BuildROMVersionAck("UTR-S201 v1.27"))
	mock.SetResponse(cmdModeSet, canned.BuildCommandModeAck())

	require.NoError(t, device.Init())

	require.NotNil(t, device.FirmwareVersion())
	assert.Equal(t, "UTR-S201 v1.27", device.FirmwareVersion().String())
	assert.Equal(t, 1, mock.GetCallCount(cmdROMVersion))
	assert.Equal(t, 1, mock.GetCallCount(cmdModeSet))
}

func TestDeviceInitFailsWhenProbeUnanswered(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	require.NoError(t, device.SetTimeout(50*time.Millisecond))

	err := device.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportTimeout)
	// The mode switch must not be attempted after a failed probe.
	assert.Zero(t, mock.GetCallCount(cmdModeSet))
}

func TestDeviceClose(t *testing.T) {
	t.Parallel()

	device, mock := newTestDevice(t)
	require.NoError(t, device.Close())
	assert.False(t, mock.IsConnected())
}

func TestConnectDeviceWithFactory(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse(cmdROMVersion, canned.BuildROMVersionAck("v2.00"))
	mock.SetResponse(cmdModeSet, canned.BuildCommandModeAck())

	device, err := ConnectDevice("192.168.0.10:9004",
		WithTransportFactory(func(path string) (Transport, error) {
			assert.Equal(t, "192.168.0.10:9004", path)
			return mock, nil
		}),
		WithConnectTimeout(2*time.Second),
	)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, device.Timeout())
	require.NotNil(t, device.FirmwareVersion())
	assert.Equal(t, "v2.00", device.FirmwareVersion().String())
}

func TestConnectDeviceWithoutInit(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := ConnectDevice("reader.local",
		WithTransportFactory(func(string) (Transport, error) { return mock, nil }),
		WithoutInit(),
	)
	require.NoError(t, err)
	assert.Nil(t, device.FirmwareVersion())
	assert.Zero(t, mock.GetCallCount(cmdROMVersion))
}

func TestConnectDeviceRequiresFactory(t *testing.T) {
	t.Parallel()

	_, err := ConnectDevice("reader.local")
	require.Error(t, err)
}

func TestConnectDeviceClosesTransportOnInitFailure(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	// No scripted responses: the probe times out and ConnectDevice must
	// not leak the transport it opened.
	_, err := ConnectDevice("reader.local",
		WithTransportFactory(func(string) (Transport, error) { return mock, nil }),
		WithConnectTimeout(50*time.Millisecond),
	)
	require.Error(t, err)
	assert.False(t, mock.IsConnected())
}
