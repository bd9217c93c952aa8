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

// Package framemgr implements the Audio-Driven Frame Manager: the
// priority arbitration that decides, on every 40ms tick, which single
// wire frame (if any) goes out. It runs entirely inside the audio
// capture callback's thread; TickVoice and TickIdle never block.
package framemgr

import (
	"fmt"
	"time"

	"github.com/opulentvoice/interlocutor/internal/frame"
	"github.com/opulentvoice/interlocutor/internal/metrics"
	"github.com/opulentvoice/interlocutor/internal/protocol"
	"github.com/opulentvoice/interlocutor/internal/queue"
	"github.com/opulentvoice/interlocutor/internal/stats"
)

// Class identifies which traffic class produced a tick's outgoing
// frame, for statistics and logging.
type Class string

const (
	ClassVoice     Class = "voice"
	ClassControl   Class = "control"
	ClassText      Class = "text"
	ClassKeepalive Class = "keepalive"
	ClassNone      Class = "none"
)

// TargetType selects whether idle slots are filled with keepalive
// control frames (computer) or left silent (modem, which provides its
// own hang-time semantics).
type TargetType string

const (
	TargetComputer TargetType = "computer"
	TargetModem    TargetType = "modem"
)

// Manager owns the control and text priority queues and arbitrates
// between voice, control, text, and keepalive traffic once per tick.
type Manager struct {
	stack *protocol.Stack

	control *queue.FIFO[frame.Wire]
	text    *queue.FIFO[frame.Wire]

	targetType        TargetType
	keepaliveInterval time.Duration
	lastKeepalive     time.Time

	stats   *stats.Counters
	metrics *metrics.Metrics
}

// New creates a Manager that builds wire frames with stack and sends
// keepalives (if targetType is TargetComputer) no more often than
// keepaliveInterval.
func New(stack *protocol.Stack, targetType TargetType, keepaliveInterval time.Duration, counters *stats.Counters, m *metrics.Metrics) *Manager {
	return &Manager{
		stack:             stack,
		control:           queue.New[frame.Wire](),
		text:              queue.New[frame.Wire](),
		targetType:        targetType,
		keepaliveInterval: keepaliveInterval,
		stats:             counters,
		metrics:           m,
	}
}

// QueueText builds the UDP/IP/COBS wire frames for text and appends
// them to the text queue. Safe to call from any thread.
func (m *Manager) QueueText(text []byte) error {
	frames, err := m.stack.CreateTextFrames(text)
	if err != nil {
		return fmt.Errorf("framemgr: queue text: %w", err)
	}
	for _, f := range frames {
		m.text.Push(f)
	}
	if m.metrics != nil {
		m.metrics.SetQueueDepth("text", m.text.Len())
	}
	return nil
}

// QueueControl frames control data and appends it to the control
// queue. Safe to call from any thread.
func (m *Manager) QueueControl(data []byte) error {
	frames, err := m.stack.CreateControlFrames(data)
	if err != nil {
		return fmt.Errorf("framemgr: queue control: %w", err)
	}
	for _, f := range frames {
		m.control.Push(f)
	}
	if m.metrics != nil {
		m.metrics.SetQueueDepth("control", m.control.Len())
	}
	return nil
}

// TickVoice handles the PTT-pressed branch: build and return every
// wire frame for one OPUS packet. Control and text frames queued
// while PTT is held are left untouched until TickIdle runs again.
func (m *Manager) TickVoice(opusPacket []byte) ([]frame.Wire, error) {
	frames, err := m.stack.CreateAudioFrames(opusPacket)
	if err != nil {
		m.stats.SendErrors.Add(1)
		return nil, fmt.Errorf("framemgr: tick voice: %w", err)
	}
	m.stats.VoiceFramesSent.Add(uint64(len(frames)))
	m.stats.TotalFramesSent.Add(uint64(len(frames)))
	if m.metrics != nil {
		m.metrics.RecordSent(string(ClassVoice))
	}
	return frames, nil
}

// StartTalkSpurt marks the next voice frame as the first of a new
// talk-spurt (called on PTT press).
func (m *Manager) StartTalkSpurt() {
	m.stack.StartTalkSpurt()
}

// TickIdle handles the PTT-released branch: priority arbitration
// across control, text, and keepalive traffic. It sends at most one
// frame per call, matching the "one frame per 40ms slot" contract.
func (m *Manager) TickIdle(now time.Time) (frame.Wire, Class, bool) {
	if f, ok := m.control.Pop(); ok {
		m.stats.ControlFramesSent.Add(1)
		m.stats.TotalFramesSent.Add(1)
		if m.metrics != nil {
			m.metrics.RecordSent(string(ClassControl))
			m.metrics.SetQueueDepth("control", m.control.Len())
		}
		return f, ClassControl, true
	}

	if f, ok := m.text.Pop(); ok {
		m.stats.TextFramesSent.Add(1)
		m.stats.TotalFramesSent.Add(1)
		if m.metrics != nil {
			m.metrics.RecordSent(string(ClassText))
			m.metrics.SetQueueDepth("text", m.text.Len())
		}
		return f, ClassText, true
	}

	if m.targetType == TargetComputer && m.keepaliveDue(now) {
		payload := []byte(fmt.Sprintf("KEEPALIVE:%d", now.Unix()))
		frames, err := m.stack.CreateControlFrames(payload)
		if err == nil && len(frames) > 0 {
			m.lastKeepalive = now
			m.stats.KeepaliveFramesSent.Add(1)
			m.stats.TotalFramesSent.Add(1)
			if m.metrics != nil {
				m.metrics.RecordSent(string(ClassKeepalive))
			}
			return frames[0], ClassKeepalive, true
		}
	}

	m.stats.SkippedFrames.Add(1)
	return frame.Wire{}, ClassNone, false
}

func (m *Manager) keepaliveDue(now time.Time) bool {
	if m.lastKeepalive.IsZero() {
		return true
	}
	return now.Sub(m.lastKeepalive) >= m.keepaliveInterval
}

// QueueDepths reports the current depth of the control and text
// queues, for the status surface.
func (m *Manager) QueueDepths() (control, text int) {
	return m.control.Len(), m.text.Len()
}
