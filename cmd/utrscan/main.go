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

// Command utrscan connects to a UTR reader, reads its settings, runs a
// multi-round tag inventory and prints the aggregated result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	utr "github.com/rftools/go-utr"
	"github.com/rftools/go-utr/detection"
	"github.com/rftools/go-utr/transport/lan"
	"github.com/rftools/go-utr/transport/serialport"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: ./utrscan.yaml if present)")
	addr := flag.String("addr", "", "LAN reader address, host or host:port (overrides config)")
	serialPort := flag.String("serial", "", "Serial port path, e.g. /dev/ttyUSB0 (overrides config)")
	rounds := flag.Int("rounds", 0, "Inventory rounds, 1-100 (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "utrscan: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(config, *addr, *serialPort, *rounds, *debug)

	logger, err := newLogger(&config.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "utrscan: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "utrscan: %v\n", err)
		os.Exit(1)
	}
}

func applyFlagOverrides(config *Config, addr, serialPort string, rounds int, debug bool) {
	if addr != "" {
		config.Reader.Address = addr
		config.Reader.SerialPort = ""
	}
	if serialPort != "" {
		config.Reader.SerialPort = serialPort
		config.Reader.Address = ""
	}
	if rounds > 0 {
		config.Scan.Rounds = rounds
	}
	if debug {
		config.Logging.Level = "debug"
	}
}

func run(ctx context.Context, config *Config, logger *zap.Logger) error {
	transport, err := openTransport(config, logger)
	if err != nil {
		return err
	}

	device, err := utr.New(transport,
		utr.WithLogger(logger),
		utr.WithTimeout(config.Reader.ConnectTimeout),
	)
	if err != nil {
		_ = transport.Close()
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer func() { _ = device.Close() }()

	if err := device.InitContext(ctx); err != nil {
		return fmt.Errorf("reader initialization failed: %w", err)
	}
	fmt.Printf("Reader firmware: %s\n", device.FirmwareVersion())

	reportSettings(ctx, device, logger)

	result, err := runScan(ctx, device, config, logger)
	if err != nil {
		return err
	}

	printSummary(result)
	logger.Info("inventory run complete",
		zap.Int("rounds", len(result.Rounds)),
		zap.Int("successful_rounds", result.SuccessfulRounds),
		zap.Int("timed_out_rounds", result.TimedOutRounds),
		zap.Int("total_tags", result.TotalTags),
		zap.Int("distinct_tags", len(result.PerTagCounts)),
		zap.Duration("elapsed", result.Elapsed))

	if config.Scan.Buzzer {
		utr.SignalInventoryResult(ctx, device, result.TotalTags > 0)
	}
	return nil
}

// openTransport picks LAN, an explicit serial port, or serial
// auto-detection, in that order.
func openTransport(config *Config, logger *zap.Logger) (utr.Transport, error) {
	if config.Reader.Address != "" {
		transport, err := lan.New(config.Reader.Address, lan.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", config.Reader.Address, err)
		}
		return transport, nil
	}

	path := config.Reader.SerialPort
	if path == "" {
		devices, err := detection.DetectAll(nil)
		if err != nil {
			return nil, fmt.Errorf("serial port detection failed: %w", err)
		}
		if len(devices) == 0 {
			return nil, utr.ErrDeviceNotFound
		}
		path = devices[0].Path
		logger.Info("auto-detected serial port", zap.String("port", path))
	}

	transport, err := serialport.New(path,
		serialport.WithLogger(logger),
		serialport.WithBaudRate(config.Reader.BaudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return transport, nil
}

// reportSettings reads the reader's current settings. Failures here
// are informational only and never stop the scan.
func reportSettings(ctx context.Context, device *utr.Device, logger *zap.Logger) {
	if power, err := device.ReadPowerContext(ctx); err != nil {
		logger.Warn("output power read failed", zap.Error(err))
	} else {
		fmt.Printf("Output power:    %.1f dBm\n", power)
	}

	if channel, err := device.ReadChannelContext(ctx); err != nil {
		logger.Warn("frequency channel read failed", zap.Error(err))
	} else {
		fmt.Printf("Active channel:  %s\n", channel)
	}

	if params, err := device.InventoryParamsContext(ctx); err != nil {
		logger.Warn("inventory parameter read failed", zap.Error(err))
	} else {
		logger.Debug("inventory parameters", zap.Binary("params", params))
	}
}

func runScan(ctx context.Context, device *utr.Device, config *Config, logger *zap.Logger) (*utr.InventoryResult, error) {
	fmt.Printf("Scanning: %d rounds, %s per round\n\n", config.Scan.Rounds, config.Scan.RoundTimeout)

	scanConfig := &utr.InventoryConfig{
		Rounds:       config.Scan.Rounds,
		RoundTimeout: config.Scan.RoundTimeout,
		OnRound: func(round int, result *utr.RoundResult, err error) {
			if err != nil {
				fmt.Printf("round %3d: failed (%v)\n", round, err)
				return
			}
			fmt.Printf("round %3d: %d tags in %s\n", round, len(result.Tags), result.Elapsed.Round(time.Millisecond))
			for _, tag := range result.Tags {
				logger.Debug("tag observed", zap.Int("round", round), zap.Stringer("tag", tag))
			}
		},
	}

	result, err := utr.RunInventory(ctx, device, scanConfig)
	if err != nil {
		return nil, fmt.Errorf("inventory run failed: %w", err)
	}
	return result, nil
}

func printSummary(result *utr.InventoryResult) {
	fmt.Printf("\n=== Inventory Summary ===\n")
	fmt.Printf("Rounds:          %d (%d ok, %d timed out)\n",
		len(result.Rounds), result.SuccessfulRounds, result.TimedOutRounds)
	fmt.Printf("Observations:    %d\n", result.TotalTags)
	fmt.Printf("Distinct tags:   %d\n", len(result.PerTagCounts))
	fmt.Printf("Elapsed:         %s\n", result.Elapsed.Round(time.Millisecond))

	if len(result.PerTagCounts) == 0 {
		return
	}

	keys := make([]string, 0, len(result.PerTagCounts))
	for key := range result.PerTagCounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Printf("\nPC+UII                             reads\n")
	for _, key := range keys {
		fmt.Printf("%-34s %5d\n", key, result.PerTagCounts[key])
	}
}
