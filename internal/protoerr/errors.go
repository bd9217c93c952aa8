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

// Package protoerr defines the sentinel errors shared across the
// protocol stack, wrapped with fmt.Errorf's %w at each call site so
// callers can classify failures with errors.Is while still getting a
// descriptive message.
package protoerr

import "errors"

// Input validation errors: fail fast at construction, surface to the
// user, never start the stream.
var (
	ErrInvalidCallsign = errors.New("invalid callsign")
	ErrOpusSizeViolation = errors.New("opus packet size violation")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Encoding errors: should not occur given validated inputs. If they
// do, the caller drops the current frame and increments an error
// counter rather than propagating further.
var (
	ErrCobsEncodeFailed   = errors.New("cobs encode failed")
	ErrHeaderPackFailed   = errors.New("header pack failed")
)

// Network send errors: drop the frame, increment an error counter,
// continue. UDP is fire-and-forget; there is no retry.
var ErrSocketSendFailed = errors.New("socket send failed")

// Network receive errors: drop the offending data, log at debug
// level, continue. A reassembly overflow clears the reassembler's
// buffer.
var (
	ErrReassemblyOverflow = errors.New("reassembly buffer overflow")
	ErrCobsDecodeFailed   = errors.New("cobs decode failed")
	ErrEmptyFrame         = errors.New("empty frame between delimiters")
	ErrMalformedIP        = errors.New("malformed ip datagram")
	ErrUnknownPort        = errors.New("unknown destination port")
)

// Fatal errors: cannot be recovered by the core engine. They
// propagate to the UI/cmd layer, which may initiate graceful
// shutdown.
var (
	ErrAudioDeviceLost  = errors.New("audio device lost")
	ErrSocketBindFailed = errors.New("socket bind failed")
)
