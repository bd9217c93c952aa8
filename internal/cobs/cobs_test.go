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

package cobs_test

import (
	"bytes"
	"testing"

	"github.com/opulentvoice/interlocutor/internal/cobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeEmptyInput(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []byte{0x01, 0x00}, cobs.Encode(nil))
}

func TestEncodeNoZeros(t *testing.T) {
	t.Parallel()
	in := []byte{0x11, 0x22, 0x33}
	got := cobs.Encode(in)
	assert.Equal(t, []byte{0x04, 0x11, 0x22, 0x33, 0x00}, got)
}

func TestEncodeLeadingZero(t *testing.T) {
	t.Parallel()
	in := []byte{0x00, 0x11, 0x22, 0x33}
	got := cobs.Encode(in)
	assert.Equal(t, []byte{0x01, 0x04, 0x11, 0x22, 0x33, 0x00}, got)
}

func TestEncodeTrailingZero(t *testing.T) {
	t.Parallel()
	in := []byte{0x11, 0x22, 0x33, 0x00}
	got := cobs.Encode(in)
	// The consumed trailing zero leaves an empty final run, which still
	// needs its own zero-length block code before the delimiter.
	assert.Equal(t, []byte{0x04, 0x11, 0x22, 0x33, 0x01, 0x00}, got)
}

func TestEncodeMaxBlockBoundary(t *testing.T) {
	t.Parallel()
	in := bytes.Repeat([]byte{0xAA}, cobs.MaxBlockSize)
	got := cobs.Encode(in)
	// A run exactly MaxBlockSize long hits the >= MaxBlockSize branch:
	// a 255 marker carrying all 254 literal bytes, then a trailing
	// zero-length block code (1), then the delimiter.
	assert.Equal(t, byte(255), got[0])
	assert.Equal(t, in, got[1:1+cobs.MaxBlockSize])
	assert.Equal(t, byte(1), got[1+cobs.MaxBlockSize])
	assert.Equal(t, byte(0x00), got[len(got)-1])
}

func TestDecodeRejectsMissingDelimiter(t *testing.T) {
	t.Parallel()
	_, err := cobs.Decode([]byte{0x01})
	assert.Error(t, err)
}

func TestDecodeRejectsUnexpectedZero(t *testing.T) {
	t.Parallel()
	_, err := cobs.Decode([]byte{0x00, 0x00})
	assert.Error(t, err)
}

func TestDecodeRejectsTruncatedBlock(t *testing.T) {
	t.Parallel()
	_, err := cobs.Decode([]byte{0x05, 0x11, 0x00})
	assert.Error(t, err)
}

func TestRoundTripKnownVectors(t *testing.T) {
	t.Parallel()
	vectors := [][]byte{
		nil,
		{},
		{0x00},
		{0x00, 0x00},
		{0x11, 0x22, 0x33, 0x44},
		{0x11, 0x00, 0x22, 0x00, 0x33},
		bytes.Repeat([]byte{0x7F}, cobs.MaxBlockSize),
		bytes.Repeat([]byte{0x7F}, cobs.MaxBlockSize+1),
		bytes.Repeat([]byte{0x7F}, cobs.MaxBlockSize*3+17),
	}
	for _, v := range vectors {
		encoded := cobs.Encode(v)
		decoded, err := cobs.Decode(encoded)
		require.NoError(t, err)
		// bytes.Equal treats the nil vector and Decode's empty result alike.
		assert.True(t, bytes.Equal(v, decoded), "round trip of %x gave %x", v, decoded)
	}
}

func TestPropertyEncodeNeverProducesInteriorZero(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 600).Draw(t, "data")
		encoded := cobs.Encode(data)
		require.NotEmpty(t, encoded)
		assert.Equal(t, byte(0x00), encoded[len(encoded)-1])
		for _, b := range encoded[:len(encoded)-1] {
			assert.NotZero(t, b)
		}
	})
}

func TestPropertyRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 600).Draw(t, "data")
		encoded := cobs.Encode(data)
		decoded, err := cobs.Decode(encoded)
		require.NoError(t, err)
		if len(data) == 0 {
			assert.Empty(t, decoded)
		} else {
			assert.Equal(t, data, decoded)
		}
	})
}
