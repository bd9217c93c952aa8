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

package callsign_test

import (
	"testing"

	"github.com/opulentvoice/interlocutor/internal/callsign"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewNormalizesCase(t *testing.T) {
	t.Parallel()
	id, err := callsign.New("  w1aw  ")
	require.NoError(t, err)
	assert.Equal(t, "W1AW", id.String())
}

func TestNewRejectsEmpty(t *testing.T) {
	t.Parallel()
	_, err := callsign.New("")
	assert.Error(t, err)
}

func TestNewRejectsInvalidCharacters(t *testing.T) {
	t.Parallel()
	_, err := callsign.New("W1AW!")
	assert.Error(t, err)
}

func TestBytesAreSixBytesWide(t *testing.T) {
	t.Parallel()
	id, err := callsign.New("W1AW")
	require.NoError(t, err)
	b := id.Bytes()
	assert.Len(t, b, callsign.Size)
}

func TestBytesRoundTripThroughFromBytes(t *testing.T) {
	t.Parallel()
	id, err := callsign.New("KC1ABC")
	require.NoError(t, err)
	b := id.Bytes()

	parsed, err := callsign.FromBytes(b[:])
	require.NoError(t, err)
	assert.Equal(t, id.String(), parsed.String())
	assert.Equal(t, id.Encoded(), parsed.Encoded())
}

func TestDecodeOfZeroIsEmptyString(t *testing.T) {
	t.Parallel()
	s, err := callsign.Decode(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

const callsignAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-/."

// genCallsign produces callsigns short enough to always fit the 6-byte
// encoding: the largest 9-character value is 40^9-1, below
// 0xFFFFFFFFFFFF, while 10 characters can exceed it.
func genCallsign(t *rapid.T) string {
	const maxLen = 9
	n := rapid.IntRange(1, maxLen).Draw(t, "len")
	runes := make([]byte, n)
	for i := range runes {
		idx := rapid.IntRange(0, len(callsignAlphabet)-1).Draw(t, "char")
		runes[i] = callsignAlphabet[idx]
	}
	return string(runes)
}

func TestPropertyEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		cs := genCallsign(t)
		encoded, err := callsign.Encode(cs)
		if err != nil {
			// Too long to fit in 6 bytes; Encode correctly rejected it.
			return
		}
		decoded, err := callsign.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, cs, decoded)
	})
}

func TestPropertyBytesRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		cs := genCallsign(t)
		id, err := callsign.New(cs)
		if err != nil {
			return
		}
		b := id.Bytes()
		parsed, err := callsign.FromBytes(b[:])
		require.NoError(t, err)
		assert.Equal(t, id.String(), parsed.String())
	})
}
