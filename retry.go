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
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for transport operations.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// BackoffMultiplier scales the delay after each failed attempt.
	BackoffMultiplier float64
	// Jitter randomizes each delay by up to this fraction either way.
	Jitter float64
	// RetryTimeout bounds the whole retry sequence. Zero disables it.
	RetryTimeout time.Duration
}

// DefaultRetryConfig returns sensible retry defaults for reader
// communication.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      10 * time.Second,
	}
}

// RetryWithConfig runs fn until it succeeds, returns a non-retryable
// error, or the attempt budget is spent. Retryability is decided by
// IsRetryable, so a device NACK or a parameter error stops immediately
// while timeouts and transient transport failures back off and retry.
func RetryWithConfig(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.RetryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.RetryTimeout)
		defer cancel()
	}

	backoff := config.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return retryAborted(attempt-1, lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return retryAborted(attempt, lastErr, ctx.Err())
		case <-time.After(jitteredBackoff(backoff, config.Jitter)):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if config.MaxBackoff > 0 && backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", config.MaxAttempts, lastErr)
}

// ExchangeWithRetry performs a full exchange with the device retry
// policy applied around it. The exchange itself never retries
// internally; this is the opt-in wrapper for callers that want backoff.
func ExchangeWithRetry(ctx context.Context, d *Device, cmd byte, data []byte) (*Response, error) {
	var resp *Response
	err := RetryWithConfig(ctx, d.config.RetryConfig, func() error {
		var exchangeErr error
		resp, exchangeErr = d.ExchangeContext(ctx, cmd, data)
		return exchangeErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func retryAborted(attempts int, lastErr, cause error) error {
	if lastErr != nil {
		return fmt.Errorf("retry aborted after %d attempts (%w): last error: %w", attempts, cause, lastErr)
	}
	return fmt.Errorf("retry aborted: %w", cause)
}

func jitteredBackoff(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	factor := 1 + (rand.Float64()*2-1)*jitter //nolint:gosec // timing jitter, not crypto
	return time.Duration(float64(d) * factor)
}
