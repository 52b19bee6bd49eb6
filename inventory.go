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
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MaxInventoryRounds is the largest accepted round count for one run.
const MaxInventoryRounds = 100

// DefaultRoundTimeout bounds one inventory round unless overridden.
const DefaultRoundTimeout = 3 * time.Second

// TagRecord is one tag observation from one inventory round.
type TagRecord struct {
	// PCUII holds the protocol control word followed by the unique
	// item identifier, exactly as transmitted by the tag.
	PCUII []byte
	// RSSI is the observed signal strength in dBm.
	RSSI float64
}

// PC returns the 2-byte protocol control word, nil when the record is
// shorter than a valid Gen2 reply.
func (t TagRecord) PC() []byte {
	if len(t.PCUII) < 2 {
		return nil
	}
	return t.PCUII[:2]
}

// UII returns the unique item identifier (EPC) without the protocol
// control word.
func (t TagRecord) UII() []byte {
	if len(t.PCUII) < 2 {
		return nil
	}
	return t.PCUII[2:]
}

func (t TagRecord) String() string {
	return fmt.Sprintf("%s (%.1f dBm)", hex.EncodeToString(t.PCUII), t.RSSI)
}

// RoundResult is the outcome of one inventory round.
type RoundResult struct {
	// Tags holds every observation in reply order, repeats included.
	// Nothing is deduplicated.
	Tags []TagRecord
	// Expected is the tag count the reader announced in its terminal
	// acknowledgment, -1 when the acknowledgment carries no count.
	Expected int
	// Elapsed is the round's wall-clock duration.
	Elapsed time.Duration
}

// Found reports whether the round observed at least one tag.
func (r *RoundResult) Found() bool {
	return len(r.Tags) > 0
}

// CountMismatch reports whether the reader announced a different tag
// count than the number of data frames it sent.
func (r *RoundResult) CountMismatch() bool {
	return r.Expected >= 0 && r.Expected != len(r.Tags)
}

// InventoryContext runs a single inventory round: one inventory
// command, zero or more tag data frames, and the reader's terminal
// acknowledgment carrying the announced tag count.
//
// A count that disagrees with the received data frames is reported via
// RoundResult.CountMismatch, not as an error.
func (d *Device) InventoryContext(ctx context.Context) (*RoundResult, error) {
	start := time.Now()

	resp, err := d.ExchangeContext(ctx, cmdUHF, []byte{uhfSubInventory})
	if err != nil {
		return nil, err
	}

	result := &RoundResult{Expected: -1}
	for _, frm := range resp.Data {
		if frm.Command != respInventoryData {
			continue
		}
		tag, err := parseTagRecord(frm.Data)
		if err != nil {
			return nil, err
		}
		result.Tags = append(result.Tags, tag)
	}

	if data := resp.Ack.Data; len(data) >= 4 && data[0] == detailInventory {
		result.Expected = int(binary.LittleEndian.Uint16(data[2:4]))
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// Tag data frame payload layout:
//
//	[0]      reply detail
//	[1:3]    RSSI, signed 16-bit big-endian, tenths of dBm
//	[3]      reserved
//	[4]      PC+UII length n
//	[5:5+n]  PC+UII bytes
func parseTagRecord(data []byte) (TagRecord, error) {
	if len(data) < 5 {
		return TagRecord{}, fmt.Errorf("%w: tag record header truncated (%d bytes)",
			ErrFrameFormat, len(data))
	}
	n := int(data[4])
	if len(data) < 5+n {
		return TagRecord{}, fmt.Errorf("%w: tag record claims %d PC+UII bytes, has %d",
			ErrFrameFormat, n, len(data)-5)
	}

	pcuii := make([]byte, n)
	copy(pcuii, data[5:5+n])
	return TagRecord{
		PCUII: pcuii,
		RSSI:  float64(int16(binary.BigEndian.Uint16(data[1:3]))) / 10,
	}, nil
}

// InventoryConfig controls a multi-round inventory run.
type InventoryConfig struct {
	// OnRound, when set, is called after every round with the 1-based
	// round number and that round's outcome. Exactly one of result and
	// err is non-nil.
	OnRound func(round int, result *RoundResult, err error)
	// Rounds is the number of rounds to run, 1 to MaxInventoryRounds.
	Rounds int
	// RoundTimeout is the deadline for each round.
	RoundTimeout time.Duration
}

// DefaultInventoryConfig returns the default run configuration.
func DefaultInventoryConfig() *InventoryConfig {
	return &InventoryConfig{
		Rounds:       10,
		RoundTimeout: DefaultRoundTimeout,
	}
}

// Validate checks the configuration bounds. It is called by
// RunInventory before any I/O.
func (c *InventoryConfig) Validate() error {
	if c.Rounds < 1 || c.Rounds > MaxInventoryRounds {
		return &ConfigError{
			Field:  "Rounds",
			Reason: fmt.Sprintf("must be 1 to %d, got %d", MaxInventoryRounds, c.Rounds),
		}
	}
	if c.RoundTimeout <= 0 {
		return &ConfigError{Field: "RoundTimeout", Reason: "must be positive"}
	}
	return nil
}

// InventoryResult aggregates a completed multi-round run.
type InventoryResult struct {
	// PerTagCounts maps hex-encoded PC+UII to the number of times that
	// tag was observed across the whole run.
	PerTagCounts map[string]int
	// Rounds holds every round in order. Failed rounds appear as
	// zero-tag entries so round numbering stays intact.
	Rounds []RoundResult
	// TotalTags is the total observation count across all rounds,
	// repeats included.
	TotalTags int
	// SuccessfulRounds counts rounds that ended in an acknowledgment.
	SuccessfulRounds int
	// TimedOutRounds counts rounds abandoned on an expired deadline.
	TimedOutRounds int
	// Elapsed is the whole run's wall-clock duration.
	Elapsed time.Duration
}

// RunInventory performs config.Rounds inventory rounds on the device
// and aggregates the outcome.
//
// Rounds are isolated: a round that fails with a device NACK, a
// timeout or a malformed reply contributes zero tags and the run
// continues with the next round. Only context cancellation and a
// closed connection abort the run. The device's exchange timeout is
// set to config.RoundTimeout for the duration of the run and restored
// afterwards.
func RunInventory(ctx context.Context, device *Device, config *InventoryConfig) (*InventoryResult, error) {
	if config == nil {
		config = DefaultInventoryConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	prevTimeout := device.Timeout()
	if err := device.SetTimeout(config.RoundTimeout); err != nil {
		return nil, fmt.Errorf("failed to apply round timeout: %w", err)
	}
	defer func() { _ = device.SetTimeout(prevTimeout) }()

	result := &InventoryResult{
		Rounds:       make([]RoundResult, 0, config.Rounds),
		PerTagCounts: make(map[string]int),
	}
	start := time.Now()

	for round := 1; round <= config.Rounds; round++ {
		roundResult, err := device.InventoryContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("inventory run aborted in round %d: %w", round, ctx.Err())
			}
			if errors.Is(err, ErrConnectionClosed) {
				return nil, fmt.Errorf("inventory run aborted in round %d: %w", round, err)
			}

			if GetErrorType(err) == ErrorTypeTimeout {
				result.TimedOutRounds++
			}
			device.logger.Debug("inventory round failed",
				zap.Int("round", round),
				zap.Error(err))
			result.Rounds = append(result.Rounds, RoundResult{Expected: -1})
			if config.OnRound != nil {
				config.OnRound(round, nil, err)
			}
			continue
		}

		device.logger.Debug("inventory round complete",
			zap.Int("round", round),
			zap.Int("tags", len(roundResult.Tags)),
			zap.Int("expected", roundResult.Expected))

		result.Rounds = append(result.Rounds, *roundResult)
		result.SuccessfulRounds++
		result.TotalTags += len(roundResult.Tags)
		for _, tag := range roundResult.Tags {
			result.PerTagCounts[hex.EncodeToString(tag.PCUII)]++
		}
		if config.OnRound != nil {
			config.OnRound(round, roundResult, nil)
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}
