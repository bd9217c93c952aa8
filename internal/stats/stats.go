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

// Package stats holds the atomic transmission counters shared across
// the audio/TX thread, the RX thread, and any UI thread reading them
// for display or export.
package stats

import "sync/atomic"

// Counters are updated with atomic increments from any thread and
// read from any thread; no lock is held across a read.
type Counters struct {
	TotalFramesSent     atomic.Uint64
	VoiceFramesSent     atomic.Uint64
	ControlFramesSent   atomic.Uint64
	TextFramesSent      atomic.Uint64
	KeepaliveFramesSent atomic.Uint64
	SkippedFrames       atomic.Uint64
	FramesReceived      atomic.Uint64
	SendErrors          atomic.Uint64
	ReceiveErrors       atomic.Uint64
}

// Snapshot is a point-in-time, non-atomic copy of Counters suitable
// for JSON serialization on the status surface.
type Snapshot struct {
	TotalFramesSent     uint64 `json:"totalFramesSent"`
	VoiceFramesSent     uint64 `json:"voiceFramesSent"`
	ControlFramesSent   uint64 `json:"controlFramesSent"`
	TextFramesSent      uint64 `json:"textFramesSent"`
	KeepaliveFramesSent uint64 `json:"keepaliveFramesSent"`
	SkippedFrames       uint64 `json:"skippedFrames"`
	FramesReceived      uint64 `json:"framesReceived"`
	SendErrors          uint64 `json:"sendErrors"`
	ReceiveErrors       uint64 `json:"receiveErrors"`
}

// Snapshot reads every counter into a plain struct.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		TotalFramesSent:     c.TotalFramesSent.Load(),
		VoiceFramesSent:     c.VoiceFramesSent.Load(),
		ControlFramesSent:   c.ControlFramesSent.Load(),
		TextFramesSent:      c.TextFramesSent.Load(),
		KeepaliveFramesSent: c.KeepaliveFramesSent.Load(),
		SkippedFrames:       c.SkippedFrames.Load(),
		FramesReceived:      c.FramesReceived.Load(),
		SendErrors:          c.SendErrors.Load(),
		ReceiveErrors:       c.ReceiveErrors.Load(),
	}
}
