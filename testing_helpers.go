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
	"sync"
	"time"

	"github.com/rftools/go-utr/internal/frame"
)

// MockTransport is a scripted in-memory transport for tests. Responses
// are keyed by command byte: WriteFrame looks up the script for the
// written frame's command and queues its frames for ReadFrame to
// deliver in order.
type MockTransport struct {
	responses  map[byte][][]byte
	sequences  map[byte][][][]byte
	errors     map[byte]error
	callCounts map[byte]int
	queue      [][]byte
	readErr    error
	lastFrame  []byte
	delay      time.Duration
	timeout    time.Duration
	mu         sync.Mutex
	closed     bool
}

var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses:  make(map[byte][][]byte),
		sequences:  make(map[byte][][][]byte),
		errors:     make(map[byte]error),
		callCounts: make(map[byte]int),
		timeout:    1 * time.Second,
	}
}

// SetResponse scripts the raw frames delivered after cmd is written.
// Passing several frames models a multi-frame reply such as an
// inventory round (data frames followed by the terminal ACK).
func (m *MockTransport) SetResponse(cmd byte, frames ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = frames
	delete(m.errors, cmd)
}

// QueueResponse scripts the raw frames for one single write of cmd.
// Queued scripts are consumed in order, one per write, before any
// standing SetResponse script. An empty script queues a silent round
// that ends in a read timeout.
func (m *MockTransport) QueueResponse(cmd byte, frames ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[cmd] = append(m.sequences[cmd], frames)
}

// SetError scripts a write failure for cmd
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[cmd] = err
}

// SetReadError forces the next ReadFrame call to fail with err
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// SetDelay makes every ReadFrame take d before returning. A delay
// longer than the armed timeout produces a timeout error, like a slow
// device would.
func (m *MockTransport) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// GetCallCount returns how many times cmd has been written
func (m *MockTransport) GetCallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCounts[cmd]
}

// LastFrame returns the most recently written raw frame
func (m *MockTransport) LastFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFrame
}

// WriteFrame records the command and queues its scripted response
func (m *MockTransport) WriteFrame(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewClosedError("WriteFrame", "mock")
	}
	if len(data) <= frame.CommandOffset {
		return ErrFrameFormat
	}

	cmd := data[frame.CommandOffset]
	m.callCounts[cmd]++
	m.lastFrame = append([]byte(nil), data...)

	if err, ok := m.errors[cmd]; ok {
		return err
	}
	if scripts, ok := m.sequences[cmd]; ok && len(scripts) > 0 {
		m.sequences[cmd] = scripts[1:]
		for _, f := range scripts[0] {
			m.queue = append(m.queue, append([]byte(nil), f...))
		}
		return nil
	}
	if frames, ok := m.responses[cmd]; ok {
		for _, f := range frames {
			m.queue = append(m.queue, append([]byte(nil), f...))
		}
	}
	return nil
}

// ReadFrame delivers the next queued frame. An empty queue times out
// immediately, modeling a silent device.
func (m *MockTransport) ReadFrame() ([]byte, error) {
	m.mu.Lock()
	delay := m.delay
	timeout := m.timeout
	m.mu.Unlock()

	if delay > 0 {
		if timeout > 0 && delay > timeout {
			time.Sleep(timeout)
			return nil, NewTimeoutError("ReadFrame", "mock")
		}
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, NewClosedError("ReadFrame", "mock")
	}
	if m.readErr != nil {
		err := m.readErr
		m.readErr = nil
		return nil, err
	}
	if len(m.queue) == 0 {
		return nil, NewTimeoutError("ReadFrame", "mock")
	}

	frm := m.queue[0]
	m.queue = m.queue[1:]
	return frm, nil
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout records the armed read deadline
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected reports whether Close has been called
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// BlockingMockTransport is a mock transport whose reads block until
// released. This is used for testing deadlock scenarios and context
// cancellation.
type BlockingMockTransport struct {
	blockChan    chan struct{}
	ResponseFunc func(raw []byte) ([]byte, error)
	Response     []byte
	lastWrite    []byte
	timeout      time.Duration
	mu           sync.Mutex
	closed       bool
}

var _ Transport = (*BlockingMockTransport)(nil)

// NewBlockingMockTransport creates a new blocking mock transport
func NewBlockingMockTransport() *BlockingMockTransport {
	return &BlockingMockTransport{
		blockChan: make(chan struct{}),
		timeout:   5 * time.Second,
	}
}

// WriteFrame records the written frame
func (m *BlockingMockTransport) WriteFrame(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return NewClosedError("WriteFrame", "mock")
	}
	m.lastWrite = append([]byte(nil), data...)
	return nil
}

// ReadFrame blocks until Unblock is called, the timeout expires, or
// the transport is closed
func (m *BlockingMockTransport) ReadFrame() ([]byte, error) {
	m.mu.Lock()
	blockChan := m.blockChan
	closed := m.closed
	responseFunc := m.ResponseFunc
	response := m.Response
	timeout := m.timeout
	lastWrite := m.lastWrite
	m.mu.Unlock()

	if closed {
		return nil, NewClosedError("ReadFrame", "mock")
	}

	select {
	case <-blockChan:
	case <-time.After(timeout):
		return nil, NewTimeoutError("ReadFrame", "mock")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, NewClosedError("ReadFrame", "mock")
	}

	if responseFunc != nil {
		return responseFunc(lastWrite)
	}
	if response != nil {
		return append([]byte(nil), response...), nil
	}

	raw, err := EncodeFrame(respAck, []byte{0x00})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Unblock allows one blocked ReadFrame to proceed
func (m *BlockingMockTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.blockChan)
		m.blockChan = make(chan struct{})
	}
}

// Close unblocks all operations and marks the transport as closed
func (m *BlockingMockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.blockChan)
	}
	return nil
}

// SetResponse configures a fixed raw frame for all ReadFrame calls
func (m *BlockingMockTransport) SetResponse(response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = response
	m.ResponseFunc = nil
}

// SetResponseFunc configures a dynamic response derived from the last
// written frame
func (m *BlockingMockTransport) SetResponseFunc(fn func(raw []byte) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseFunc = fn
	m.Response = nil
}

// SetTimeout configures the timeout for blocking operations
func (m *BlockingMockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected reports whether Close has been called
func (m *BlockingMockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*BlockingMockTransport) Type() TransportType {
	return TransportMock
}
