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

// Package protocol implements the Opulent Voice layered frame
// construction: RTP/UDP/IP header stacking, COBS encoding, and the
// split into fixed 133-byte wire frames. It is a pure function over
// its inputs; it holds no reference back to the frame manager that
// calls it.
package protocol

import (
	"fmt"
	"net"

	"github.com/opulentvoice/interlocutor/internal/callsign"
	"github.com/opulentvoice/interlocutor/internal/cobs"
	"github.com/opulentvoice/interlocutor/internal/frame"
	"github.com/opulentvoice/interlocutor/internal/protoerr"
	"github.com/opulentvoice/interlocutor/internal/wire"
)

// OpusPayloadSize is the fixed width an OPUS-encoded audio packet
// must have to be valid for one Opulent Voice audio frame.
const OpusPayloadSize = 80

// Ports used as IP/UDP destination ports per traffic class.
const (
	PortVoice   = 57373
	PortText    = 57374
	PortControl = 57375
)

// Stack holds the per-destination header builder state (RTP sequence
// state, UDP ephemeral ports, IP identification counters) needed to
// build successive frames for one peer.
type Stack struct {
	Station callsign.ID

	sourceIP net.IP
	destIP   net.IP

	rtpState    *wire.RTPState
	udpVoice    *wire.UDPHeaderBuilder
	udpText     *wire.UDPHeaderBuilder
	udpControl  *wire.UDPHeaderBuilder
	ipVoice     *wire.IPHeaderBuilder
	ipText      *wire.IPHeaderBuilder
	ipControl   *wire.IPHeaderBuilder
}

// NewStack creates a protocol stack targeting destIP, detecting the
// local source IP via wire.DetectSourceIP, with a fresh RTP SSRC
// derived from the station identifier.
func NewStack(station callsign.ID, destIP net.IP) *Stack {
	sourceIP := wire.DetectSourceIP(destIP)
	ssrc := uint32(station.Encoded())
	if ssrc == 0 {
		ssrc = 1
	}
	return &Stack{
		Station:    station,
		sourceIP:   sourceIP,
		destIP:     destIP,
		rtpState:   wire.NewRTPState(wire.PayloadTypeOpus, ssrc),
		udpVoice:   wire.NewUDPHeaderBuilder(PortVoice),
		udpText:    wire.NewUDPHeaderBuilder(PortText),
		udpControl: wire.NewUDPHeaderBuilder(PortControl),
		ipVoice:    &wire.IPHeaderBuilder{SourceIP: sourceIP, DestIP: destIP},
		ipText:     &wire.IPHeaderBuilder{SourceIP: sourceIP, DestIP: destIP},
		ipControl:  &wire.IPHeaderBuilder{SourceIP: sourceIP, DestIP: destIP},
	}
}

// StartTalkSpurt marks the next audio frame as the beginning of a new
// talk-spurt, setting the RTP marker bit.
func (s *Stack) StartTalkSpurt() {
	s.rtpState.StartTalkSpurt()
}

// CreateAudioFrames builds the wire frame(s) for one 40ms OPUS packet.
// opusPacket must be exactly OpusPayloadSize bytes.
func (s *Stack) CreateAudioFrames(opusPacket []byte) ([]frame.Wire, error) {
	if len(opusPacket) != OpusPayloadSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", protoerr.ErrOpusSizeViolation, OpusPayloadSize, len(opusPacket))
	}

	rtpHeader := s.rtpState.BuildHeader()
	rtpFrame := append(append([]byte{}, rtpHeader[:]...), opusPacket...)

	udpHeader, err := s.udpVoice.BuildHeader(rtpFrame, s.sourceIP, s.destIP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protoerr.ErrHeaderPackFailed, err)
	}
	udpDatagram := append(append([]byte{}, udpHeader[:]...), rtpFrame...)

	ipHeader, err := s.ipVoice.BuildHeader(wire.TOSVoice, len(udpDatagram))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protoerr.ErrHeaderPackFailed, err)
	}
	ipDatagram := append(append([]byte{}, ipHeader[:]...), udpDatagram...)

	return s.encodeAndSplit(ipDatagram)
}

// CreateTextFrames builds the wire frame(s) for a chat message.
func (s *Stack) CreateTextFrames(text []byte) ([]frame.Wire, error) {
	return s.createPayloadFrames(text, PortText, wire.TOSText, s.udpText, s.ipText)
}

// CreateControlFrames builds the wire frame(s) for a control message
// (e.g. PTT_START, PTT_STOP, KEEPALIVE:<unix_ts>).
func (s *Stack) CreateControlFrames(payload []byte) ([]frame.Wire, error) {
	return s.createPayloadFrames(payload, PortControl, wire.TOSControl, s.udpControl, s.ipControl)
}

func (s *Stack) createPayloadFrames(payload []byte, _ uint16, tos byte, udpBuilder *wire.UDPHeaderBuilder, ipBuilder *wire.IPHeaderBuilder) ([]frame.Wire, error) {
	udpHeader, err := udpBuilder.BuildHeader(payload, s.sourceIP, s.destIP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protoerr.ErrHeaderPackFailed, err)
	}
	udpDatagram := append(append([]byte{}, udpHeader[:]...), payload...)

	ipHeader, err := ipBuilder.BuildHeader(tos, len(udpDatagram))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protoerr.ErrHeaderPackFailed, err)
	}
	ipDatagram := append(append([]byte{}, ipHeader[:]...), udpDatagram...)

	return s.encodeAndSplit(ipDatagram)
}

// encodeAndSplit COBS-encodes ipDatagram, splits it into PayloadSize
// chunks (the last zero-padded), and wraps each chunk in a transport
// header to form wire frames.
func (s *Stack) encodeAndSplit(ipDatagram []byte) ([]frame.Wire, error) {
	encoded := cobs.Encode(ipDatagram)

	chunkCount := (len(encoded) + frame.PayloadSize - 1) / frame.PayloadSize
	if chunkCount == 0 {
		chunkCount = 1
	}

	frames := make([]frame.Wire, 0, chunkCount)
	for i := 0; i < chunkCount; i++ {
		start := i * frame.PayloadSize
		end := start + frame.PayloadSize
		var chunk [frame.PayloadSize]byte
		if end > len(encoded) {
			end = len(encoded)
		}
		copy(chunk[:], encoded[start:end])

		w, err := frame.Build(s.Station, chunk[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", protoerr.ErrHeaderPackFailed, err)
		}
		frames = append(frames, w)
	}
	return frames, nil
}

// ParsedMessage is a decoded inbound application message: the IP/UDP
// header fields needed for dispatch, plus the raw payload.
type ParsedMessage struct {
	DestPort uint16
	SourceIP net.IP
	DestIP   net.IP
	Payload  []byte
	RTP      *wire.ParsedRTPHeader
}

// Parse decodes a COBS-decoded IP datagram (as emitted by the
// reassembler) into its header fields and payload, dispatching voice
// frames through the RTP header parser.
func Parse(ipDatagram []byte) (ParsedMessage, error) {
	ipHeader, err := wire.ParseIPHeader(ipDatagram)
	if err != nil {
		return ParsedMessage{}, fmt.Errorf("%w: %w", protoerr.ErrMalformedIP, err)
	}
	if len(ipDatagram) < wire.IPHeaderSize+wire.UDPHeaderSize {
		return ParsedMessage{}, fmt.Errorf("%w: datagram too short", protoerr.ErrMalformedIP)
	}

	udpSection := ipDatagram[wire.IPHeaderSize:]
	udpHeader, err := wire.ParseUDPHeader(udpSection)
	if err != nil {
		return ParsedMessage{}, fmt.Errorf("%w: %w", protoerr.ErrMalformedIP, err)
	}

	body := udpSection[wire.UDPHeaderSize:]
	if len(body) > udpHeader.PayloadLength {
		body = body[:udpHeader.PayloadLength]
	}

	msg := ParsedMessage{
		DestPort: udpHeader.DestPort,
		SourceIP: ipHeader.SourceIP,
		DestIP:   ipHeader.DestIP,
		Payload:  body,
	}

	if udpHeader.DestPort == PortVoice {
		rtp, err := wire.ParseRTPHeader(body)
		if err != nil {
			return ParsedMessage{}, fmt.Errorf("%w: %w", protoerr.ErrMalformedIP, err)
		}
		msg.RTP = &rtp
		msg.Payload = body[wire.RTPHeaderSize:]
	}

	switch udpHeader.DestPort {
	case PortVoice, PortText, PortControl:
	default:
		return ParsedMessage{}, fmt.Errorf("%w: port %d", protoerr.ErrUnknownPort, udpHeader.DestPort)
	}

	return msg, nil
}
