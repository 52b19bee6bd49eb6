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

// Package detection enumerates serial ports that may host a USB model
// reader. Candidates are listed, never probed; opening a port and
// talking to it is the caller's decision.
//
// Only the USB model can be discovered this way. LAN model readers
// need an explicit address.
package detection

import (
	"context"
	"strings"

	"go.bug.st/serial/enumerator"
)

// DeviceInfo describes one candidate reader port
type DeviceInfo struct {
	// Metadata carries optional USB descriptor details keyed by
	// "product" and "serial_number".
	Metadata map[string]string
	// Transport is always "serial" for detected devices.
	Transport string
	// Path is the port path to open, e.g. /dev/ttyUSB0 or COM3.
	Path string
	// Name is a human-readable label for the port.
	Name string
	// VIDPID is the USB vendor:product pair in "XXXX:XXXX" hex form,
	// empty for non-USB ports.
	VIDPID string
}

// Options configures detection behavior
type Options struct {
	// Blocklist lists VID:PID pairs that are never reported.
	Blocklist []string
	// IgnorePaths lists port paths that are never reported.
	IgnorePaths []string
}

// DefaultOptions returns the default detection options
func DefaultOptions() Options {
	return Options{
		Blocklist: DefaultBlocklist(),
	}
}

// DetectAll returns candidate reader serial ports
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	return DetectAllContext(context.Background(), opts)
}

// DetectAllContext returns candidate reader serial ports. An empty
// result with a nil error means no ports were found.
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	devices := enumeratePorts()
	if len(devices) == 0 {
		fallback, err := fallbackPorts()
		if err != nil {
			return nil, err
		}
		devices = fallback
	}

	filtered := make([]DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		if IsPathIgnored(dev.Path, opts.IgnorePaths) {
			continue
		}
		if dev.VIDPID != "" && IsBlocked(dev.VIDPID, opts.Blocklist) {
			continue
		}
		filtered = append(filtered, dev)
	}
	return filtered, nil
}

// enumeratePorts lists serial ports with USB descriptor metadata
func enumeratePorts() []DeviceInfo {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil
	}

	devices := make([]DeviceInfo, 0, len(ports))
	for _, port := range ports {
		dev := DeviceInfo{
			Transport: "serial",
			Path:      port.Name,
			Name:      port.Name,
		}
		if port.IsUSB {
			dev.VIDPID = strings.ToUpper(port.VID + ":" + port.PID)
			dev.Metadata = make(map[string]string)
			if port.Product != "" {
				dev.Name = port.Product
				dev.Metadata["product"] = port.Product
			}
			if port.SerialNumber != "" {
				dev.Metadata["serial_number"] = port.SerialNumber
			}
		}
		devices = append(devices, dev)
	}
	return devices
}
