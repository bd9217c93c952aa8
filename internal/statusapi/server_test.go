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

package statusapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/opulentvoice/interlocutor/internal/stats"
	"github.com/opulentvoice/interlocutor/internal/statusapi"
	"github.com/stretchr/testify/require"
)

func TestHealthzReportsOK(t *testing.T) {
	t.Parallel()
	counters := &stats.Counters{}
	server := statusapi.New("127.0.0.1", 0, counters)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestStatsReflectsCounterSnapshot(t *testing.T) {
	t.Parallel()
	counters := &stats.Counters{}
	counters.TotalFramesSent.Add(7)
	server := statusapi.New("127.0.0.1", 0, counters)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"totalFramesSent":7`)
}

func TestWebsocketFeedDeliversBroadcastEvents(t *testing.T) {
	t.Parallel()
	counters := &stats.Counters{}
	server := statusapi.New("127.0.0.1", 0, counters)

	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the upgrade handler a moment to register the client before
	// broadcasting, since the dial returning is not synchronized with it.
	time.Sleep(50 * time.Millisecond)
	server.Broadcast("text", map[string]string{"from": "N0CALL", "text": "hello"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Kind    string `json:"kind"`
		Payload map[string]string
	}
	require.NoError(t, json.Unmarshal(data, &event))
	require.Equal(t, "text", event.Kind)
	require.Equal(t, "hello", event.Payload["text"])
}
