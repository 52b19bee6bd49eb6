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
	"time"
)

// Transport defines the interface for communication with UTR readers.
// Implemented by the LAN (TCP) and serial (USB model) backends.
//
// A transport owns one connection and the reassembly buffer for that
// connection's byte stream. ReadFrame returns raw frame bytes that are
// structurally complete but not yet checksum-validated; DecodeFrame
// performs validation so corruption is reported, not skipped.
type Transport interface {
	// WriteFrame writes one encoded frame to the reader
	WriteFrame(data []byte) error

	// ReadFrame returns the next structurally complete frame, waiting up
	// to the configured timeout. Stray bytes before a start marker are
	// discarded. Returns a *TransportError wrapping ErrTransportTimeout
	// when the deadline passes, or ErrConnectionClosed on end-of-stream.
	ReadFrame() ([]byte, error)

	// Close closes the transport connection
	Close() error

	// SetTimeout sets the read timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportLAN represents TCP transport to a LAN-model reader.
	TransportLAN TransportType = "lan"
	// TransportSerial represents serial transport to a USB-model reader.
	TransportSerial TransportType = "serial"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportWithRetry wraps a Transport with retry capabilities for
// write operations. Reads are not retried: ReadFrame is bounded by the
// caller's deadline, and silently reading again would stretch it.
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// WriteFrame writes a frame, retrying transient failures
func (t *TransportWithRetry) WriteFrame(data []byte) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		if err := t.transport.WriteFrame(data); err != nil {
			return &TransportError{
				Op:        "WriteFrame",
				Err:       err,
				Type:      GetErrorType(err),
				Retryable: IsRetryable(err),
			}
		}
		return nil
	})
}

// ReadFrame reads the next frame from the underlying transport
func (t *TransportWithRetry) ReadFrame() ([]byte, error) {
	data, err := t.transport.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read through retry wrapper: %w", err)
	}
	return data, nil
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// SetTimeout sets the read timeout for the transport
func (t *TransportWithRetry) SetTimeout(timeout time.Duration) error {
	if err := t.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
