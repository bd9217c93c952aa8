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

// Package frame defines the fixed 133-byte transport frame that rides
// on the wire as a single UDP datagram: a 12-byte transport header
// (station ID, reserved token, reserved padding) followed by a
// 121-byte COBS payload chunk.
package frame

import (
	"fmt"

	"github.com/opulentvoice/interlocutor/internal/callsign"
)

const (
	// HeaderSize is the width of the transport header prepended to
	// every payload chunk.
	HeaderSize = 12

	// PayloadSize is the width of the COBS payload chunk carried by
	// a single wire frame.
	PayloadSize = 121

	// WireSize is the total size of a wire frame: 12 + 121. Several
	// historical references to 134 bytes exist in the surrounding
	// documentation; 133 is authoritative.
	WireSize = HeaderSize + PayloadSize
)

// Token is the reserved 3-byte field in the transport header,
// constant across every frame and currently unvalidated on receive.
// It is reserved for a future authentication scheme.
var Token = [3]byte{0xBB, 0xAA, 0xDD}

// Wire is a single 133-byte transport frame ready to place on the
// wire as one UDP datagram.
type Wire [WireSize]byte

// Build assembles a wire frame from a station identifier and a
// payload chunk. payload must be exactly PayloadSize bytes; callers
// are responsible for zero-padding the final chunk of a split.
func Build(station callsign.ID, payload []byte) (Wire, error) {
	if len(payload) != PayloadSize {
		return Wire{}, fmt.Errorf("frame: payload must be %d bytes, got %d", PayloadSize, len(payload))
	}
	var w Wire
	sid := station.Bytes()
	copy(w[0:6], sid[:])
	copy(w[6:9], Token[:])
	// bytes 9-11 (reserved) are left zero.
	copy(w[12:], payload)
	return w, nil
}

// StationID returns the station identifier carried in the frame's
// transport header.
func (w Wire) StationID() (callsign.ID, error) {
	return callsign.FromBytes(w[0:6])
}

// Payload returns the 121-byte COBS payload chunk.
func (w Wire) Payload() []byte {
	return w[HeaderSize:]
}
