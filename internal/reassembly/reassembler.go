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

// Package reassembly reconstitutes COBS-framed messages out of a
// stream of fixed-size wire payload chunks, tolerating a logical
// message spanning multiple chunks.
//
// Chunks are assumed to arrive in order from a single peer. Nothing
// here reorders them: UDP datagrams that arrive out of order corrupt
// the messages they belong to.
package reassembly

import (
	"fmt"

	"github.com/opulentvoice/interlocutor/internal/cobs"
	"github.com/opulentvoice/interlocutor/internal/protoerr"
)

// MaxBufferSize is the safety ceiling on the reassembly buffer. If no
// delimiter appears before the buffer grows past this size, the
// buffer is purged and an overflow error is reported; this bounds
// memory growth against a peer that never sends a zero byte.
const MaxBufferSize = 64 * 1024

// Reassembler owns an append-only byte buffer fed by the RX thread.
// It is not safe for concurrent use; callers must serialize access
// (the wire format assumes a single RX thread owns one Reassembler
// per peer).
type Reassembler struct {
	buffer []byte
	stats  Stats
}

// Stats tracks reassembly outcomes for the status surface.
type Stats struct {
	FramesEmitted  uint64
	EmptyFrames    uint64
	Overflows      uint64
	DecodeFailures uint64
}

// New creates an empty Reassembler.
func New() *Reassembler {
	return &Reassembler{}
}

// Feed appends a received payload chunk and returns every complete
// application message (IP datagram) the chunk completed, COBS-decoded
// and ready for protocol.Parse. Partial trailing data remains
// buffered for the next call.
func (r *Reassembler) Feed(chunk []byte) ([][]byte, error) {
	r.buffer = append(r.buffer, chunk...)

	var messages [][]byte
	for {
		p := indexZero(r.buffer)
		if p == -1 {
			break
		}

		cobsFrame := r.buffer[0 : p+1] // includes the delimiter byte itself
		r.buffer = r.buffer[p+1:]

		if len(cobsFrame) == 1 {
			// Nothing but the delimiter: an empty run between two
			// adjacent zeros. Drop it and keep scanning.
			r.stats.EmptyFrames++
			continue
		}

		decoded, err := cobs.Decode(cobsFrame)
		if err != nil {
			r.stats.DecodeFailures++
			return messages, fmt.Errorf("%w: %w", protoerr.ErrCobsDecodeFailed, err)
		}
		r.stats.FramesEmitted++
		messages = append(messages, decoded)
	}

	if len(r.buffer) > MaxBufferSize {
		r.buffer = nil
		r.stats.Overflows++
		return messages, protoerr.ErrReassemblyOverflow
	}

	return messages, nil
}

// Stats returns a snapshot of reassembly outcome counters.
func (r *Reassembler) Stats() Stats {
	return r.stats
}

// Reset discards any buffered partial data, used after an unrecoverable
// decode error to resynchronize on the next delimiter.
func (r *Reassembler) Reset() {
	r.buffer = nil
}

func indexZero(data []byte) int {
	for i, b := range data {
		if b == 0 {
			return i
		}
	}
	return -1
}
