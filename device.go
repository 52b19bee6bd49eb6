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
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rftools/go-utr/detection"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures the opt-in retry wrapper behavior
	RetryConfig *RetryConfig
	// Timeout is the default deadline for one exchange
	Timeout time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     1 * time.Second,
	}
}

// Device represents a UTR-series UHF RFID reader/writer.
//
// The protocol is half-duplex request/response over a single
// connection: at most one exchange may be outstanding at a time, and
// Exchange enforces that. Beyond the exchange guard, Device is NOT
// thread-safe; call it from one goroutine or add external
// synchronization.
type Device struct {
	transport  Transport
	config     *DeviceConfig
	logger     *zap.Logger
	romVersion *ROMVersion
	exchanging atomic.Bool
}

// New creates a new UTR device on the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Init verifies the link with a ROM version probe and switches the
// reader into command mode
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext verifies the link and switches the reader into command
// mode. The ROM version is cached and available via FirmwareVersion
// afterwards.
func (d *Device) InitContext(ctx context.Context) error {
	version, err := d.ROMVersionContext(ctx)
	if err != nil {
		return fmt.Errorf("ROM version probe failed: %w", err)
	}
	d.romVersion = version
	d.logger.Debug("reader answered ROM version probe",
		zap.String("version", version.String()))

	if err := d.SetCommandModeContext(ctx); err != nil {
		return fmt.Errorf("command mode switch failed: %w", err)
	}
	return nil
}

// FirmwareVersion returns the ROM version cached by Init, or nil when
// the device has not been initialized.
func (d *Device) FirmwareVersion() *ROMVersion {
	return d.romVersion
}

// Timeout returns the current default deadline for one exchange
func (d *Device) Timeout() time.Duration {
	return d.config.Timeout
}

// SetTimeout sets the default deadline for one exchange
func (d *Device) SetTimeout(timeout time.Duration) error {
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// SetRetryConfig updates the retry configuration
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
	}
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports
// from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for ConnectDevice
type ConnectOption func(*connectConfig) error

// connectConfig holds configuration options for device connection
type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	deviceOptions          []Option
	timeout                time.Duration
	autoDetect             bool
	skipInit               bool
}

// WithAutoDetection enables serial-port auto-detection instead of using
// a specific path. Only the USB model can be discovered this way; LAN
// readers need an explicit address.
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithConnectTimeout sets the exchange deadline applied at connect time
func WithConnectTimeout(timeout time.Duration) ConnectOption {
	return func(c *connectConfig) error {
		c.timeout = timeout
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the factory used for detected
// devices
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

// WithoutInit skips the ROM version probe and command mode switch at
// connect time
func WithoutInit() ConnectOption {
	return func(c *connectConfig) error {
		c.skipInit = true
		return nil
	}
}

// ConnectDevice creates and initializes a UTR device from a path or
// auto-detection. This is a high-level convenience wrapper around
// transport creation, device construction and Init.
//
// Example usage:
//
//	// LAN model at a known address
//	device, err := utr.ConnectDevice("192.168.0.10:9004",
//	    utr.WithTransportFactory(lanFactory))
//
//	// USB model, first detected port
//	device, err := utr.ConnectDevice("",
//	    utr.WithAutoDetection(),
//	    utr.WithTransportFromDeviceFactory(serialFactory))
func ConnectDevice(path string, opts ...ConnectOption) (*Device, error) {
	config, err := applyConnectOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to apply connect options: %w", err)
	}

	transport, err := createTransport(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := setupDevice(transport, config)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	return device, nil
}

func applyConnectOptions(opts []ConnectOption) (*connectConfig, error) {
	config := &connectConfig{
		timeout: 1 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func createTransport(path string, config *connectConfig) (Transport, error) {
	if config.autoDetect || path == "" {
		return createAutoDetectedTransport(config.transportDeviceFactory)
	}
	return createManualTransport(path, config.transportFactory)
}

func setupDevice(transport Transport, config *connectConfig) (*Device, error) {
	device, err := New(transport, config.deviceOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	if config.timeout > 0 {
		if err := device.SetTimeout(config.timeout); err != nil {
			return nil, fmt.Errorf("failed to set timeout: %w", err)
		}
	}

	if !config.skipInit {
		if err := device.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize device: %w", err)
		}
	}

	return device, nil
}

// createManualTransport handles creation of transport for a specific path
func createManualTransport(path string, factory TransportFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}

	return transport, nil
}

// createAutoDetectedTransport handles auto-detection of devices
func createAutoDetectedTransport(factory TransportFromDeviceFactory) (Transport, error) {
	devices, err := detection.DetectAll(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}

	if len(devices) == 0 {
		return nil, ErrDeviceNotFound
	}

	if factory == nil {
		return nil, errors.New("transport device factory not provided")
	}
	return factory(devices[0])
}
