// SPDX-License-Identifier: AGPL-3.0-or-later
// Interlocutor - an Opulent Voice radio endpoint
// Copyright (C) 2026 The Interlocutor Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// Package callsign implements the base-40 Station Identifier codec:
// a radio callsign packed into a fixed 6-byte big-endian integer.
package callsign

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Size is the wire width of an encoded Station Identifier.
const Size = 6

// MaxEncoded is the largest value a 6-byte big-endian integer can hold.
const MaxEncoded = 0xFFFFFFFFFFFF

const base = 40

var forward = map[rune]uint64{
	'-': 37, '/': 38, '.': 39,
}

var reverse = map[uint64]rune{
	0: 0, 37: '-', 38: '/', 39: '.',
}

func init() {
	for i := rune('A'); i <= 'Z'; i++ {
		v := uint64(i-'A') + 1
		forward[i] = v
		reverse[v] = i
	}
	for i := rune('0'); i <= '9'; i++ {
		v := uint64(i-'0') + 27
		forward[i] = v
		reverse[v] = i
	}
}

// ID is a validated Station Identifier: a callsign and its base-40
// encoding, ready to place on the wire.
type ID struct {
	callsign string
	encoded  uint64
}

// New validates callsign (case-insensitive, surrounding whitespace
// trimmed) and returns its Station Identifier.
func New(callsign string) (ID, error) {
	normalized := strings.ToUpper(strings.TrimSpace(callsign))
	if normalized == "" {
		return ID{}, fmt.Errorf("callsign: empty callsign")
	}
	encoded, err := Encode(normalized)
	if err != nil {
		return ID{}, err
	}
	return ID{callsign: normalized, encoded: encoded}, nil
}

// Encode packs callsign into its base-40 integer value. callsign must
// already be upper-cased; characters outside A-Z, 0-9, '-', '/', '.'
// are rejected.
func Encode(callsign string) (uint64, error) {
	var encoded uint64
	runes := []rune(callsign)
	for i := len(runes) - 1; i >= 0; i-- {
		c := runes[i]
		v, ok := forward[c]
		if !ok {
			return 0, fmt.Errorf("callsign: invalid character %q", c)
		}
		encoded = encoded*base + v
	}
	if encoded > MaxEncoded {
		return 0, fmt.Errorf("callsign: encoded value exceeds 6 bytes")
	}
	return encoded, nil
}

// Decode reverses Encode, reconstructing the callsign string from its
// base-40 integer value.
func Decode(encoded uint64) (string, error) {
	if encoded == 0 {
		return "", nil
	}
	var b []rune
	for encoded > 0 {
		remainder := encoded % base
		c, ok := reverse[remainder]
		if !ok || (remainder == 0 && encoded != 0) {
			return "", fmt.Errorf("callsign: invalid encoded digit %d", remainder)
		}
		b = append(b, c)
		encoded /= base
	}
	return string(b), nil
}

// Bytes renders the Station Identifier as its fixed 6-byte big-endian
// wire representation.
func (id ID) Bytes() [Size]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id.encoded)
	var out [Size]byte
	copy(out[:], buf[2:])
	return out
}

// FromBytes parses a 6-byte big-endian Station Identifier off the wire.
func FromBytes(b []byte) (ID, error) {
	if len(b) != Size {
		return ID{}, fmt.Errorf("callsign: wire representation must be %d bytes, got %d", Size, len(b))
	}
	var buf [8]byte
	copy(buf[2:], b)
	encoded := binary.BigEndian.Uint64(buf[:])
	callsign, err := Decode(encoded)
	if err != nil {
		return ID{}, err
	}
	return ID{callsign: callsign, encoded: encoded}, nil
}

// String returns the plain-text callsign.
func (id ID) String() string {
	return id.callsign
}

// Encoded returns the raw base-40 integer value.
func (id ID) Encoded() uint64 {
	return id.encoded
}
