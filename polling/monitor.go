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

// Package polling provides continuous tag presence monitoring on top
// of repeated inventory rounds. The monitor turns the reader's raw
// per-round observations into arrive/depart events, smoothing over
// the round-to-round read flakiness inherent to UHF.
package polling

import (
	"context"
	"errors"
	"fmt"
	"time"

	utr "github.com/rftools/go-utr"
)

// Config configures a Monitor.
type Config struct {
	// PollInterval is the pause between inventory rounds.
	PollInterval time.Duration
	// RoundTimeout is the deadline for one inventory round.
	RoundTimeout time.Duration
	// DepartAfter is the number of consecutive rounds a tag may go
	// unseen before it is reported as departed.
	DepartAfter int
}

// DefaultConfig returns monitoring defaults suited to a reader with a
// handful of tags in the field.
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 100 * time.Millisecond,
		RoundTimeout: 1 * time.Second,
		DepartAfter:  3,
	}
}

// Validate checks the configuration bounds before any I/O.
func (c *Config) Validate() error {
	if c.PollInterval < 0 {
		return fmt.Errorf("%w: poll interval must not be negative", utr.ErrInvalidConfig)
	}
	if c.RoundTimeout <= 0 {
		return fmt.Errorf("%w: round timeout must be positive", utr.ErrInvalidConfig)
	}
	if c.DepartAfter < 1 {
		return fmt.Errorf("%w: depart after must be at least 1 round", utr.ErrInvalidConfig)
	}
	return nil
}

// Monitor runs inventory rounds until its context is cancelled and
// reports tag arrivals and departures through callbacks.
//
// Callbacks run on the monitoring goroutine between rounds; a slow
// callback delays the next round. Set the callbacks before calling
// Start.
type Monitor struct {
	device *utr.Device
	config *Config
	state  *presenceMap

	// OnTagArrive is called once when a tag enters the field.
	OnTagArrive func(tag utr.TagRecord)
	// OnTagDepart is called once with the hex PC+UII of a tag that
	// left the field.
	OnTagDepart func(pcuii string)
	// OnRound, when set, is called after every round with the round's
	// raw outcome. Exactly one of result and err is non-nil.
	OnRound func(round int, result *utr.RoundResult, err error)
}

// NewMonitor creates a monitor for the device. A nil config uses
// DefaultConfig.
func NewMonitor(device *utr.Device, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		device: device,
		config: config,
		state:  newPresenceMap(config.DepartAfter),
	}
}

// Device returns the underlying reader device.
func (m *Monitor) Device() *utr.Device {
	return m.device
}

// Present returns the hex PC+UII of every tag currently considered in
// the field.
func (m *Monitor) Present() []string {
	return m.state.present()
}

// Start runs the monitoring loop until the context is cancelled or the
// connection is lost. Individual round failures (timeouts, device
// NACKs, corrupted frames) are reported via OnRound and the loop
// continues; only cancellation and a closed connection end it.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.config.Validate(); err != nil {
		return err
	}

	prevTimeout := m.device.Timeout()
	if err := m.device.SetTimeout(m.config.RoundTimeout); err != nil {
		return fmt.Errorf("failed to apply round timeout: %w", err)
	}
	defer func() { _ = m.device.SetTimeout(prevTimeout) }()

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("monitoring stopped: %w", err)
		}

		result, err := m.device.InventoryContext(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return fmt.Errorf("monitoring stopped in round %d: %w", round, ctx.Err())
		case err != nil && errors.Is(err, utr.ErrConnectionClosed):
			return fmt.Errorf("monitoring lost the reader in round %d: %w", round, err)
		case err != nil:
			if m.OnRound != nil {
				m.OnRound(round, nil, err)
			}
			m.applyRound(round, nil)
		default:
			if m.OnRound != nil {
				m.OnRound(round, result, nil)
			}
			m.applyRound(round, result.Tags)
		}

		if m.config.PollInterval > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("monitoring stopped: %w", ctx.Err())
			case <-time.After(m.config.PollInterval):
			}
		}
	}
}

// applyRound folds one round's observations into the presence state
// and fires arrive/depart callbacks.
func (m *Monitor) applyRound(round int, tags []utr.TagRecord) {
	arrivals, departures := m.state.observe(round, tags)
	if m.OnTagArrive != nil {
		for _, tag := range arrivals {
			m.OnTagArrive(tag)
		}
	}
	if m.OnTagDepart != nil {
		for _, key := range departures {
			m.OnTagDepart(key)
		}
	}
}
