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

package detection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	blocklist := []string{"1234:5678", " abcd:ef01 "}

	tests := []struct {
		name   string
		vidpid string
		want   bool
	}{
		{name: "exact match", vidpid: "1234:5678", want: true},
		{name: "case insensitive", vidpid: "ABCD:EF01", want: true},
		{name: "whitespace tolerated", vidpid: " 1234:5678", want: true},
		{name: "not listed", vidpid: "0000:0000", want: false},
		{name: "empty", vidpid: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsBlocked(tt.vidpid, blocklist))
		})
	}
}

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	ignore := []string{"/dev/ttyUSB0", "COM3", ""}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "verbatim match", path: "/dev/ttyUSB0", want: true},
		{name: "normalized match", path: "/dev//ttyUSB0", want: true},
		{name: "case insensitive after normalization", path: "com3", want: true},
		{name: "different port", path: "/dev/ttyUSB1", want: false},
		{name: "empty path never ignored", path: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPathIgnored(tt.path, ignore))
		})
	}

	assert.False(t, IsPathIgnored("/dev/ttyUSB0", nil))
}

func TestIsHex(t *testing.T) {
	t.Parallel()

	assert.True(t, isHex("1A2b3C"))
	assert.True(t, isHex("0000"))
	assert.False(t, isHex(""))
	assert.False(t, isHex("12G4"))
	assert.False(t, isHex("12:34"))
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.NotNil(t, opts.Blocklist)
	assert.Empty(t, opts.IgnorePaths)
}

func TestDetectAllContextHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DetectAllContext(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDetectAllFiltersIgnoredPaths(t *testing.T) {
	t.Parallel()

	// Whatever ports the host machine has, ignoring all of them must
	// leave nothing behind.
	all, err := DetectAll(nil)
	require.NoError(t, err)

	ignore := make([]string, 0, len(all))
	for _, dev := range all {
		ignore = append(ignore, dev.Path)
	}

	filtered, err := DetectAll(&Options{IgnorePaths: ignore})
	require.NoError(t, err)
	assert.Empty(t, filtered)
}
