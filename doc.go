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

/*
Package utr provides a pure Go library for driving UTR-series UHF RFID
reader/writers.

UTR readers interrogate EPC Gen2 tags in the 916-923 MHz band and are
controlled over a small framed command protocol, identical across the
LAN (TCP) and USB (serial) models. This library implements that
protocol: framing and checksums, command exchanges, multi-round tag
inventory and the reader's configuration commands.

Features:
  - LAN (TCP) and serial transport support
  - Multi-round tag inventory with per-round isolation and aggregation
  - Reader configuration: command mode, output power, frequency channel,
    inventory parameters
  - Tag memory writes and buzzer control
  - Retry logic with configurable backoff
  - Comprehensive error handling

Basic Usage:

	import (
	    "github.com/rftools/go-utr"
	    "github.com/rftools/go-utr/transport/lan"
	)

	// Connect to a LAN model reader
	transport, err := lan.New("192.168.0.10:9004")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Create and initialize the device
	device, err := utr.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	// Or create with custom options
	device, err = utr.New(transport,
	    utr.WithTimeout(2*time.Second),
	    utr.WithMaxRetries(5),
	)

	// Run a 10-round inventory
	result, err := utr.RunInventory(context.Background(), device,
	    utr.DefaultInventoryConfig())
	if err != nil {
	    log.Fatal(err)
	}

	for pcuii, count := range result.PerTagCounts {
	    fmt.Printf("%s read %d times\n", pcuii, count)
	}

Transport Selection:

The library supports both reader interfaces:

  - LAN: TCP to the reader's control port (default 9004)
  - Serial: USB models exposing a virtual COM port

Error Handling:

All operations return meaningful errors that can be inspected:

	if errors.Is(err, utr.ErrChecksumMismatch) {
	    // Corrupted frame
	}
	if code, ok := utr.IsNack(err); ok {
	    // The reader rejected the command; code says why
	}

Thread Safety:

A Device guards against overlapping exchanges but is otherwise not
thread-safe. If you need concurrent access, implement appropriate
synchronization in your application.
*/
package utr
