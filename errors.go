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
)

// Sentinel errors returned by the protocol engine and transports.
var (
	// ErrTransportTimeout indicates no complete frame arrived within the
	// read deadline.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrTransportRead indicates a read operation failed.
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportWrite indicates a write operation failed.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrConnectionClosed indicates the connection reached end-of-stream
	// or was reset while an exchange was pending.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrNotConnected indicates an operation was attempted before the
	// transport was connected.
	ErrNotConnected = errors.New("transport not connected")
	// ErrCommunicationFailed indicates repeated transport attempts were
	// exhausted without a usable response.
	ErrCommunicationFailed = errors.New("communication failed")

	// ErrFrameFormat indicates the frame header layout is wrong: bad
	// start marker, bad address byte, or a declared length that does not
	// match the received byte count.
	ErrFrameFormat = errors.New("malformed frame")
	// ErrChecksumMismatch indicates the SUM byte does not equal the
	// arithmetic sum of the covered span.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrFrameTermination indicates the end marker or terminator byte is
	// missing at the offset implied by the length byte.
	ErrFrameTermination = errors.New("frame not terminated")
	// ErrDataTooLarge indicates a command payload exceeds the one-byte
	// length field.
	ErrDataTooLarge = errors.New("data too large for frame")

	// ErrInvalidParameter indicates a caller-supplied argument is outside
	// the accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidConfig indicates run configuration was rejected before
	// any I/O took place.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrExchangeInProgress indicates Exchange was re-entered while a
	// previous exchange on the same device had not completed.
	ErrExchangeInProgress = errors.New("exchange already in progress")
	// ErrDeviceNotFound indicates detection found no candidate reader.
	ErrDeviceNotFound = errors.New("no UTR device found")
)

// ErrorType classifies an error for retry decisions.
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve by
	// retrying.
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve by retrying.
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a deadline expired.
	ErrorTypeTimeout
)

// TransportError describes a failed transport operation.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError. Retryability follows the
// error type: only permanent errors are non-retryable.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a TransportError for an expired read deadline.
func NewTimeoutError(op, port string) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrTransportTimeout,
		Type:      ErrorTypeTimeout,
		Retryable: true,
	}
}

// NewClosedError creates a TransportError for a connection that reached
// end-of-stream or was reset.
func NewClosedError(op, port string) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrConnectionClosed,
		Type:      ErrorTypePermanent,
		Retryable: false,
	}
}

// NewDataTooLargeError creates a TransportError for an oversized payload.
func NewDataTooLargeError(op, port string) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       ErrDataTooLarge,
		Type:      ErrorTypePermanent,
		Retryable: false,
	}
}

// ConfigError reports run configuration rejected before any I/O took
// place.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Device NACK error codes as reported in the second data byte of a NACK
// frame.
const (
	NackCodeCRC          byte = 0x01 // command CRC incorrect
	NackCodeTimeOver     byte = 0x02 // command not completed in time
	NackCodeReceive      byte = 0x03 // receive error
	NackCodeNoTagReply   byte = 0x04 // no response from tag
	NackCodeCommand      byte = 0x07 // undefined or unsupported command
	NackCodeUHFIC        byte = 0x0A // UHF IC error
	NackCodeSum          byte = 0x42 // command SUM value incorrect
	NackCodeFormat       byte = 0x44 // command format or parameter incorrect
	NackCodeCarrierSense byte = 0x60 // carrier sense found no free channel
	NackCodeHardware     byte = 0x64 // internal hardware fault
	NackCodeAntenna      byte = 0x68 // antenna disconnection detected
)

var nackMessages = map[byte]string{
	NackCodeCRC:          "CRC error",
	NackCodeTimeOver:     "time over",
	NackCodeReceive:      "receive error",
	NackCodeNoTagReply:   "no tag response",
	NackCodeCommand:      "command error",
	NackCodeUHFIC:        "UHF IC error",
	NackCodeSum:          "SUM error",
	NackCodeFormat:       "format error",
	NackCodeCarrierSense: "carrier sense error",
	NackCodeHardware:     "hardware error",
	NackCodeAntenna:      "antenna disconnection",
}

// NackError is a negative acknowledgment from the device: the command
// was received intact but rejected, with the reason in Code.
type NackError struct {
	Code byte
}

func (e *NackError) Error() string {
	return fmt.Sprintf("device NACK: %s (code 0x%02X)", NackMessage(e.Code), e.Code)
}

// NackMessage returns the human-readable meaning of a device NACK code.
func NackMessage(code byte) string {
	if msg, ok := nackMessages[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsNack reports whether err is a device negative acknowledgment, and
// if so returns its error code.
func IsNack(err error) (byte, bool) {
	var nack *NackError
	if errors.As(err, &nack) {
		return nack.Code, true
	}
	return 0, false
}

// IsRetryable returns true if the error is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Retryable
	}

	// A NACK means the device understood the command and refused it;
	// retrying the same bytes will not change its mind.
	var nack *NackError
	if errors.As(err, &nack) {
		return false
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrFrameFormat),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrFrameTermination):
		return true
	default:
		return false
	}
}

// GetErrorType classifies an error for backoff decisions.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrFrameFormat),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrFrameTermination):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
