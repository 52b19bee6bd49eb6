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

// Package serialport provides the serial transport for USB model
// readers, which speak the same framed protocol over a virtual COM
// port.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	utr "github.com/rftools/go-utr"
	"github.com/rftools/go-utr/internal/frame"
)

const (
	defaultBaudRate = 115200
	defaultTimeout  = 1 * time.Second
	readChunkSize   = 256
)

// Transport implements the utr.Transport interface for serial
// communication
type Transport struct {
	port      serial.Port
	scanner   *frame.Scanner
	logger    *zap.Logger
	path      string
	baudRate  int
	timeout   time.Duration
	connected bool
}

// Option configures the transport before the port is opened
type Option func(*Transport)

// WithLogger sets the logger for port lifecycle and frame I/O
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithBaudRate overrides the default 115200 baud
func WithBaudRate(baudRate int) Option {
	return func(t *Transport) {
		t.baudRate = baudRate
	}
}

// New opens the serial port at path
func New(path string, opts ...Option) (*Transport, error) {
	t := &Transport{
		scanner:  frame.NewScanner(),
		logger:   zap.NewNop(),
		path:     path,
		baudRate: defaultBaudRate,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	port, err := serial.Open(path, buildMode(t.baudRate))
	if err != nil {
		return nil, utr.NewTransportError("Open", path, err, utr.ErrorTypePermanent)
	}

	t.port = port
	t.connected = true
	t.logger.Info("serial port opened",
		zap.String("port", path),
		zap.Int("baud_rate", t.baudRate))
	return t, nil
}

// buildMode returns the port mode for the reader: 8 data bits, no
// parity, one stop bit.
func buildMode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// WriteFrame sends one raw frame. Writing starts a new exchange, so
// any unconsumed bytes from the previous one are dropped first.
func (t *Transport) WriteFrame(data []byte) error {
	if !t.connected {
		return utr.ErrNotConnected
	}

	t.scanner.Reset()

	n, err := t.port.Write(data)
	if err != nil {
		return t.wrapIOError("WriteFrame", err)
	}
	if n != len(data) {
		return utr.NewTransportError("WriteFrame", t.path,
			fmt.Errorf("incomplete write: wrote %d of %d bytes: %w", n, len(data), utr.ErrTransportWrite),
			utr.ErrorTypeTransient)
	}

	t.logger.Debug("frame written", zap.Int("bytes", len(data)))
	return nil
}

// ReadFrame returns the next structurally complete frame from the
// port, waiting up to the configured timeout.
//
// The serial layer returns zero bytes without error when its own read
// timeout expires, so the loop re-arms the remaining window on every
// pass until the overall deadline is spent.
func (t *Transport) ReadFrame() ([]byte, error) {
	if !t.connected {
		return nil, utr.ErrNotConnected
	}

	if frm := t.scanner.Next(); frm != nil {
		return frm, nil
	}

	deadline := time.Now().Add(t.timeout)
	buf := make([]byte, readChunkSize)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, utr.NewTimeoutError("ReadFrame", t.path)
		}
		if err := t.port.SetReadTimeout(remaining); err != nil {
			return nil, t.wrapIOError("ReadFrame", err)
		}

		n, err := t.port.Read(buf)
		if n > 0 {
			t.scanner.Feed(buf[:n])
			if frm := t.scanner.Next(); frm != nil {
				return frm, nil
			}
		}
		if err != nil {
			return nil, t.wrapIOError("ReadFrame", err)
		}
	}
}

// wrapIOError maps a port error onto the transport error model
func (t *Transport) wrapIOError(op string, err error) error {
	var portErr *serial.PortError
	if errors.Is(err, io.EOF) ||
		(errors.As(err, &portErr) && portErr.Code() == serial.PortClosed) {
		t.connected = false
		t.logger.Warn("serial port lost", zap.String("port", t.path), zap.Error(err))
		return utr.NewClosedError(op, t.path)
	}
	return utr.NewTransportError(op, t.path, err, utr.ErrorTypeTransient)
}

// SetTimeout sets the deadline applied to subsequent reads
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil || !t.connected {
		return nil
	}
	t.connected = false
	t.logger.Info("serial port closed", zap.String("port", t.path))
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected returns true while the port is usable
func (t *Transport) IsConnected() bool {
	return t.connected
}

// Type returns the transport type
func (*Transport) Type() utr.TransportType {
	return utr.TransportSerial
}

// Ensure Transport implements utr.Transport
var _ utr.Transport = (*Transport)(nil)
