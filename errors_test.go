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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportErrorFormatting(t *testing.T) {
	t.Parallel()

	withPort := NewTimeoutError("ReadFrame", "192.168.0.10:9004")
	assert.Equal(t, "ReadFrame 192.168.0.10:9004: transport timeout", withPort.Error())

	withoutPort := NewTransportError("WriteFrame", "", ErrTransportWrite, ErrorTypeTransient)
	assert.Equal(t, "WriteFrame: transport write failed", withoutPort.Error())
}

func TestTransportErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewClosedError("ReadFrame", "/dev/ttyUSB0")
	assert.ErrorIs(t, err, ErrConnectionClosed)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "/dev/ttyUSB0", transportErr.Port)
}

func TestTransportErrorConstructors(t *testing.T) {
	t.Parallel()

	timeout := NewTimeoutError("ReadFrame", "mock")
	assert.Equal(t, ErrorTypeTimeout, timeout.Type)
	assert.True(t, timeout.Retryable)

	closed := NewClosedError("ReadFrame", "mock")
	assert.Equal(t, ErrorTypePermanent, closed.Type)
	assert.False(t, closed.Retryable)

	tooLarge := NewDataTooLargeError("WriteFrame", "mock")
	assert.ErrorIs(t, tooLarge, ErrDataTooLarge)
	assert.False(t, tooLarge.Retryable)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "timeout", err: NewTimeoutError("ReadFrame", "mock"), want: true},
		{name: "connection closed", err: NewClosedError("ReadFrame", "mock"), want: false},
		{name: "checksum mismatch", err: fmt.Errorf("decode: %w", ErrChecksumMismatch), want: true},
		{name: "frame format", err: ErrFrameFormat, want: true},
		{name: "frame termination", err: ErrFrameTermination, want: true},
		{name: "device NACK", err: &NackError{Code: NackCodeNoTagReply}, want: false},
		{name: "wrapped NACK", err: fmt.Errorf("round 3: %w", &NackError{Code: NackCodeCRC}), want: false},
		{name: "unrelated error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypePermanent},
		{name: "timeout sentinel", err: ErrTransportTimeout, want: ErrorTypeTimeout},
		{name: "timeout transport error", err: NewTimeoutError("ReadFrame", "mock"), want: ErrorTypeTimeout},
		{name: "checksum", err: ErrChecksumMismatch, want: ErrorTypeTransient},
		{name: "closed transport error", err: NewClosedError("ReadFrame", "mock"), want: ErrorTypePermanent},
		{name: "unrelated", err: errors.New("boom"), want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestNackMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no tag response", NackMessage(NackCodeNoTagReply))
	assert.Equal(t, "antenna disconnection", NackMessage(NackCodeAntenna))
	assert.Equal(t, "unknown error", NackMessage(0xFF))

	err := &NackError{Code: NackCodeCarrierSense}
	assert.Equal(t, "device NACK: carrier sense error (code 0x60)", err.Error())
}

func TestIsNack(t *testing.T) {
	t.Parallel()

	code, ok := IsNack(fmt.Errorf("exchange: %w", &NackError{Code: NackCodeSum}))
	require.True(t, ok)
	assert.Equal(t, NackCodeSum, code)

	_, ok = IsNack(ErrTransportTimeout)
	assert.False(t, ok)
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := &ConfigError{Field: "Rounds", Reason: "must be 1 to 100, got 0"}
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "invalid configuration: Rounds must be 1 to 100, got 0", err.Error())
}
