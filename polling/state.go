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

package polling

import (
	"encoding/hex"
	"sort"

	utr "github.com/rftools/go-utr"
)

// presence tracks one tag currently considered in the antenna field.
type presence struct {
	lastSeenRound int
	lastRSSI      float64
}

// presenceMap derives arrive/depart transitions from raw round
// observations. UHF reads are flaky round to round, so a tag only
// departs after it has been missing for a configured number of
// consecutive rounds.
type presenceMap struct {
	tags        map[string]*presence
	departAfter int
}

func newPresenceMap(departAfter int) *presenceMap {
	return &presenceMap{
		tags:        make(map[string]*presence),
		departAfter: departAfter,
	}
}

// observe records one round's observations and returns the tags that
// newly arrived and the hex PC+UII keys of tags that departed. A
// failed round passes nil tags and only ages existing presences.
func (p *presenceMap) observe(round int, tags []utr.TagRecord) (arrivals []utr.TagRecord, departures []string) {
	for _, tag := range tags {
		key := hex.EncodeToString(tag.PCUII)
		if existing, ok := p.tags[key]; ok {
			existing.lastSeenRound = round
			existing.lastRSSI = tag.RSSI
			continue
		}
		p.tags[key] = &presence{lastSeenRound: round, lastRSSI: tag.RSSI}
		arrivals = append(arrivals, tag)
	}

	for key, pres := range p.tags {
		if round-pres.lastSeenRound >= p.departAfter {
			delete(p.tags, key)
			departures = append(departures, key)
		}
	}
	sort.Strings(departures)
	return arrivals, departures
}

// present returns the hex PC+UII keys currently considered in the
// field, sorted for stable output.
func (p *presenceMap) present() []string {
	keys := make([]string, 0, len(p.tags))
	for key := range p.tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
