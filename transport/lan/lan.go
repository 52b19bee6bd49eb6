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

// Package lan provides the TCP transport for LAN model readers
package lan

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"go.uber.org/zap"

	utr "github.com/rftools/go-utr"
	"github.com/rftools/go-utr/internal/frame"
)

const (
	// DefaultPort is the reader's control port
	DefaultPort = 9004

	defaultTimeout     = 1 * time.Second
	defaultDialTimeout = 5 * time.Second
	keepAlivePeriod    = 30 * time.Second
	readChunkSize      = 256
)

// Transport implements the utr.Transport interface for TCP communication
type Transport struct {
	conn        net.Conn
	scanner     *frame.Scanner
	logger      *zap.Logger
	addr        string
	timeout     time.Duration
	dialTimeout time.Duration
	connected   bool
}

// Option configures the transport before it connects
type Option func(*Transport)

// WithLogger sets the logger for connection lifecycle and frame I/O
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithDialTimeout sets the TCP connect timeout
func WithDialTimeout(timeout time.Duration) Option {
	return func(t *Transport) {
		t.dialTimeout = timeout
	}
}

// New connects to a LAN model reader. addr is "host" or "host:port";
// a bare host gets the default control port 9004.
func New(addr string, opts ...Option) (*Transport, error) {
	t := &Transport{
		scanner:     frame.NewScanner(),
		logger:      zap.NewNop(),
		addr:        withDefaultPort(addr),
		timeout:     defaultTimeout,
		dialTimeout: defaultDialTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}

	dialer := &net.Dialer{
		Timeout:   t.dialTimeout,
		KeepAlive: keepAlivePeriod,
	}
	conn, err := dialer.Dial("tcp", t.addr)
	if err != nil {
		return nil, utr.NewTransportError("Dial", t.addr, err, utr.ErrorTypeTransient)
	}

	t.conn = conn
	t.connected = true
	t.logger.Info("connected to reader", zap.String("addr", t.addr))
	return t, nil
}

// withDefaultPort appends the default control port to a bare host
func withDefaultPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, fmt.Sprintf("%d", DefaultPort))
}

// WriteFrame sends one raw frame. Writing starts a new exchange, so
// any unconsumed bytes from the previous one are dropped first.
func (t *Transport) WriteFrame(data []byte) error {
	if !t.connected {
		return utr.ErrNotConnected
	}

	t.scanner.Reset()

	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return utr.NewTransportError("WriteFrame", t.addr, err, utr.ErrorTypeTransient)
	}
	if _, err := t.conn.Write(data); err != nil {
		return t.wrapIOError("WriteFrame", err)
	}

	t.logger.Debug("frame written", zap.Int("bytes", len(data)))
	return nil
}

// ReadFrame returns the next structurally complete frame from the
// connection, waiting up to the configured timeout. The deadline
// covers the whole reassembly, so a slow multi-read frame is fine as
// long as it completes in time.
func (t *Transport) ReadFrame() ([]byte, error) {
	if !t.connected {
		return nil, utr.ErrNotConnected
	}

	if frm := t.scanner.Next(); frm != nil {
		return frm, nil
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return nil, utr.NewTransportError("ReadFrame", t.addr, err, utr.ErrorTypeTransient)
	}

	buf := make([]byte, readChunkSize)
	for {
		n, err := t.conn.Read(buf)
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

// wrapIOError maps a connection error onto the transport error model
func (t *Transport) wrapIOError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return utr.NewTimeoutError(op, t.addr)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		t.connected = false
		t.logger.Warn("connection lost", zap.String("addr", t.addr), zap.Error(err))
		return utr.NewClosedError(op, t.addr)
	}
	return utr.NewTransportError(op, t.addr, err, utr.ErrorTypeTransient)
}

// SetTimeout sets the deadline applied to subsequent reads and writes
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// Close closes the connection. A pending ReadFrame resolves with a
// closed-connection error.
func (t *Transport) Close() error {
	if t.conn == nil || !t.connected {
		return nil
	}
	t.connected = false
	t.logger.Info("connection closed", zap.String("addr", t.addr))
	if err := t.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// IsConnected returns true while the connection is usable
func (t *Transport) IsConnected() bool {
	return t.connected
}

// Type returns the transport type
func (*Transport) Type() utr.TransportType {
	return utr.TransportLAN
}

// Ensure Transport implements utr.Transport
var _ utr.Transport = (*Transport)(nil)
