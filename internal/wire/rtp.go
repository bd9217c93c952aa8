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

// Package wire builds and parses the RTP, UDP, and IPv4 headers that
// the protocol stack layers under every outbound datagram.
package wire

import (
	"encoding/binary"
	"fmt"
	"math/rand"
)

const (
	rtpVersion  = 2
	// PayloadTypeOpus is the dynamic RTP payload type used for
	// Opulent Voice's OPUS audio stream, per RFC 3551's dynamic
	// range (96-127).
	PayloadTypeOpus = 96

	// RTPHeaderSize is the fixed width of an RTP header carrying no
	// CSRCs and no extension.
	RTPHeaderSize = 12

	// SamplesPerFrame is the number of audio samples represented by
	// one 40ms Opulent Voice frame at 48kHz.
	SamplesPerFrame = 1920
)

// RTPState tracks the mutable per-stream fields of an RTP header
// across successive calls to BuildHeader: sequence number, SSRC, and
// the running timestamp.
type RTPState struct {
	PayloadType uint8
	SSRC        uint32
	sequence    uint16
	timestamp   uint32
	talkSpurt   bool
}

// NewRTPState creates RTP header state with a random initial sequence
// number and the given SSRC. A fresh state always marks its first
// built header as the start of a talk-spurt.
func NewRTPState(payloadType uint8, ssrc uint32) *RTPState {
	return &RTPState{
		PayloadType: payloadType,
		SSRC:        ssrc,
		sequence:    uint16(rand.Intn(65536)), //nolint:gosec
		timestamp:   uint32(rand.Int63n(1 << 32)), //nolint:gosec
		talkSpurt:   true,
	}
}

// StartTalkSpurt marks the next header built as the first packet of
// a new talk-spurt, setting its marker bit.
func (s *RTPState) StartTalkSpurt() {
	s.talkSpurt = true
}

// BuildHeader renders the next RTP header and advances sequence
// number and timestamp for the following call.
func (s *RTPState) BuildHeader() [RTPHeaderSize]byte {
	marker := uint32(0)
	if s.talkSpurt {
		marker = 1
	}
	s.talkSpurt = false

	firstWord := (uint32(rtpVersion) << 30) |
		(marker << 23) |
		(uint32(s.PayloadType&0x7F) << 16) |
		uint32(s.sequence)

	var out [RTPHeaderSize]byte
	binary.BigEndian.PutUint32(out[0:4], firstWord)
	binary.BigEndian.PutUint32(out[4:8], s.timestamp)
	binary.BigEndian.PutUint32(out[8:12], s.SSRC)

	s.sequence++
	s.timestamp += SamplesPerFrame
	return out
}

// ParsedRTPHeader holds the decoded fields of an inbound RTP header.
type ParsedRTPHeader struct {
	Version        uint8
	Marker         bool
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
}

// ParseRTPHeader decodes the fixed 12-byte RTP header at the front of
// header.
func ParseRTPHeader(header []byte) (ParsedRTPHeader, error) {
	if len(header) < RTPHeaderSize {
		return ParsedRTPHeader{}, fmt.Errorf("wire: rtp header too short: %d bytes", len(header))
	}
	firstWord := binary.BigEndian.Uint32(header[0:4])
	return ParsedRTPHeader{
		Version:        uint8(firstWord>>30) & 0x3,
		Marker:         (firstWord>>23)&0x1 == 1,
		PayloadType:    uint8(firstWord>>16) & 0x7F,
		SequenceNumber: uint16(firstWord & 0xFFFF),
		Timestamp:      binary.BigEndian.Uint32(header[4:8]),
		SSRC:           binary.BigEndian.Uint32(header[8:12]),
	}, nil
}
