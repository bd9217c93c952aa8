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

// Package cobs implements Consistent Overhead Byte Stuffing, the framing
// codec that lets the reassembler find message boundaries inside a
// stream of fixed-size wire chunks by guaranteeing every encoded frame
// is free of zero bytes except for a single trailing delimiter.
package cobs

import "fmt"

// MaxBlockSize is the largest run of non-zero bytes a single COBS code
// byte can describe. Runs at or beyond this length are split into a
// 255 code byte (a "maximum block, keep going" marker) followed by
// exactly MaxBlockSize literal bytes.
const MaxBlockSize = 254

// Encode returns the COBS encoding of data, including the trailing
// zero-byte delimiter. The result never contains a zero byte except
// for that final one.
func Encode(data []byte) []byte {
	if len(data) == 0 {
		return []byte{0x01, 0x00}
	}

	out := make([]byte, 0, len(data)+len(data)/MaxBlockSize+2)

	pos := 0
	for {
		zeroPos := indexZero(data, pos)
		if zeroPos == -1 {
			zeroPos = len(data)
		}
		blockLen := zeroPos - pos

		for blockLen >= MaxBlockSize {
			out = append(out, MaxBlockSize+1)
			out = append(out, data[pos:pos+MaxBlockSize]...)
			pos += MaxBlockSize
			blockLen = zeroPos - pos
		}

		out = append(out, byte(blockLen+1))
		out = append(out, data[pos:zeroPos]...)

		if zeroPos >= len(data) {
			break
		}
		pos = zeroPos + 1
	}

	out = append(out, 0x00)
	return out
}

func indexZero(data []byte, from int) int {
	for i := from; i < len(data); i++ {
		if data[i] == 0 {
			return i
		}
	}
	return -1
}

// Decode reverses Encode. encoded must end in a zero-byte delimiter.
func Decode(encoded []byte) ([]byte, error) {
	if len(encoded) == 0 || encoded[len(encoded)-1] != 0x00 {
		return nil, fmt.Errorf("cobs: encoded data must end with a zero delimiter")
	}
	encoded = encoded[:len(encoded)-1]

	out := make([]byte, 0, len(encoded))
	pos := 0
	for pos < len(encoded) {
		code := encoded[pos]
		if code == 0 {
			return nil, fmt.Errorf("cobs: unexpected zero byte at offset %d", pos)
		}
		pos++

		blockLen := int(code) - 1
		if pos+blockLen > len(encoded) {
			return nil, fmt.Errorf("cobs: block of length %d extends beyond encoded data", blockLen)
		}
		out = append(out, encoded[pos:pos+blockLen]...)
		pos += blockLen

		if int(code) <= MaxBlockSize && pos < len(encoded) {
			out = append(out, 0x00)
		}
	}
	return out, nil
}
