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

package wire_test

import (
	"net"
	"testing"

	"github.com/opulentvoice/interlocutor/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRTPHeaderMarkerOnlyOnTalkSpurtStart(t *testing.T) {
	t.Parallel()
	state := wire.NewRTPState(wire.PayloadTypeOpus, 0xDEADBEEF)

	first := state.BuildHeader()
	parsed, err := wire.ParseRTPHeader(first[:])
	require.NoError(t, err)
	assert.True(t, parsed.Marker)
	assert.Equal(t, uint8(wire.PayloadTypeOpus), parsed.PayloadType)

	second := state.BuildHeader()
	parsed2, err := wire.ParseRTPHeader(second[:])
	require.NoError(t, err)
	assert.False(t, parsed2.Marker)
	assert.Equal(t, parsed.SequenceNumber+1, parsed2.SequenceNumber)
	assert.Equal(t, parsed.Timestamp+wire.SamplesPerFrame, parsed2.Timestamp)
}

func TestRTPHeaderStartTalkSpurtSetsMarkerAgain(t *testing.T) {
	t.Parallel()
	state := wire.NewRTPState(wire.PayloadTypeOpus, 1)
	_ = state.BuildHeader()
	state.StartTalkSpurt()
	h := state.BuildHeader()
	parsed, err := wire.ParseRTPHeader(h[:])
	require.NoError(t, err)
	assert.True(t, parsed.Marker)
}

func TestUDPChecksumNeverZero(t *testing.T) {
	t.Parallel()
	builder := wire.NewUDPHeaderBuilder(57373)
	src := net.IPv4(192, 168, 1, 50)
	dst := net.IPv4(192, 168, 1, 100)

	payload := make([]byte, 92)
	for i := range payload {
		payload[i] = 0
	}
	header, err := builder.BuildHeader(payload, src, dst)
	require.NoError(t, err)

	parsed, err := wire.ParseUDPHeader(header[:])
	require.NoError(t, err)
	assert.NotZero(t, parsed.Checksum)
	assert.Equal(t, len(payload), parsed.PayloadLength)
}

func TestIPHeaderChecksumVerifies(t *testing.T) {
	t.Parallel()
	builder := &wire.IPHeaderBuilder{
		SourceIP: net.IPv4(10, 0, 0, 1),
		DestIP:   net.IPv4(10, 0, 0, 2),
	}
	header, err := builder.BuildHeader(wire.TOSVoice, 100)
	require.NoError(t, err)
	assert.True(t, wire.VerifyChecksum(header[:]))

	parsed, err := wire.ParseIPHeader(header[:])
	require.NoError(t, err)
	assert.Equal(t, byte(wire.TOSVoice), parsed.TOS)
	assert.Equal(t, byte(17), parsed.Protocol)
	assert.Equal(t, byte(64), parsed.TTL)
}

func TestIPHeaderIdentificationIsMonotonic(t *testing.T) {
	t.Parallel()
	builder := &wire.IPHeaderBuilder{
		SourceIP: net.IPv4(10, 0, 0, 1),
		DestIP:   net.IPv4(10, 0, 0, 2),
	}
	h1, err := builder.BuildHeader(wire.TOSText, 10)
	require.NoError(t, err)
	h2, err := builder.BuildHeader(wire.TOSText, 10)
	require.NoError(t, err)

	p1, err := wire.ParseIPHeader(h1[:])
	require.NoError(t, err)
	p2, err := wire.ParseIPHeader(h2[:])
	require.NoError(t, err)
	assert.Equal(t, p1.Identification+1, p2.Identification)
}
