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

package queue_test

import (
	"sync"
	"testing"

	"github.com/opulentvoice/interlocutor/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsEmpty(t *testing.T) {
	t.Parallel()
	q := queue.New[string]()
	require.NotNil(t, q)
	assert.Equal(t, 0, q.Len())
}

func TestPushAndPopFIFOOrder(t *testing.T) {
	t.Parallel()
	q := queue.New[string]()

	assert.Equal(t, 1, q.Push("first"))
	assert.Equal(t, 2, q.Push("second"))

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestDrainReturnsAllInOrderAndEmpties(t *testing.T) {
	t.Parallel()
	q := queue.New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	drained := q.Drain()
	assert.Equal(t, []int{1, 2, 3}, drained)
	assert.Equal(t, 0, q.Len())

	assert.Nil(t, q.Drain())
}

func TestPushBinaryPayload(t *testing.T) {
	t.Parallel()
	q := queue.New[[]byte]()
	data := []byte{0x00, 0xFF, 0xAB, 0xCD}
	q.Push(data)

	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, data, v)
}

func TestConcurrentPushersSingleConsumer(t *testing.T) {
	t.Parallel()
	q := queue.New[int]()

	const producers = 8
	const perProducer = 50
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, q.Len())
}
