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

// Package audio defines the external collaborator seams for the
// microphone capture device, the OPUS codec, and the PTT source. None
// of these are implemented here: the frame engine depends only on
// these interfaces, and a concrete backend (ALSA/PortAudio capture,
// a cgo OPUS binding, a GPIO button) is wired in at the cmd layer.
package audio

import "context"

// Capture delivers one 40ms PCM frame per call to Read, blocking
// until the next frame is available or ctx is canceled.
type Capture interface {
	// Read blocks until one 40ms PCM frame is captured and returns
	// it. The frame's byte length is backend-specific (depends on
	// sample format); callers validate it before encoding.
	Read(ctx context.Context) ([]byte, error)

	// Close releases the underlying audio device.
	Close() error
}

// Encoder turns one PCM frame into an OPUS packet. Implementations
// must guarantee a fixed OpusPayloadSize-byte output for a valid
// input frame, per the Opulent Voice wire contract.
type Encoder interface {
	Encode(pcm []byte) ([]byte, error)
}

// Decoder reverses Encoder for playback of received voice frames.
type Decoder interface {
	Decode(opus []byte) ([]byte, error)
}

// PTTSource reports whether push-to-talk is currently held. A GPIO
// button, a keyboard binding, or a web UI toggle all implement this
// the same way.
type PTTSource interface {
	// Active returns the current PTT state.
	Active() bool

	// Changes returns a channel that receives the new state on every
	// transition. Implementations close it when the source is shut
	// down.
	Changes() <-chan bool
}
