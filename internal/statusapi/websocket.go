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

package statusapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const wsBufferSize = 1024

// Event is one push notification sent to every connected web UI
// client: a received chat line, a dispatched command result, or a
// periodic statistics snapshot.
type Event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// feedHub fans a stream of Events out to every connected /ws/feed
// client. It is the web counterpart of the terminal UI's stdout.
type feedHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uuid.UUID]*websocket.Conn
}

func newFeedHub() *feedHub {
	return &feedHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsBufferSize,
			WriteBufferSize: wsBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]*websocket.Conn),
	}
}

func (h *feedHub) handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.New()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	slog.Debug("web UI client connected", "client", id)

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		conn.Close()
		slog.Debug("web UI client disconnected", "client", id)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// broadcast sends event to every connected client, dropping any
// client whose write fails.
func (h *feedHub) broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Debug("failed to marshal websocket event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, id)
			conn.Close()
		}
	}
}
