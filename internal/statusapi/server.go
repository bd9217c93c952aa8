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

// Package statusapi exposes the endpoint's local HTTP status surface:
// liveness, Prometheus metrics, and a JSON snapshot of transmission
// statistics. It is a convenience surface only — nothing in the core
// frame engine depends on it being reachable.
package statusapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opulentvoice/interlocutor/internal/sdk"
	"github.com/opulentvoice/interlocutor/internal/stats"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps the gin engine and the underlying http.Server so the
// cmd layer can start and gracefully stop it alongside the rest of
// the engine.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	feed   *feedHub
}

// New builds the status router: /healthz, /metrics, /stats, /ws/feed.
func New(bind string, port int, counters *stats.Counters) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	feed := newFeedHub()

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": sdk.Version,
			"commit":  sdk.GitCommit,
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, counters.Snapshot())
	})
	engine.GET("/ws/feed", feed.handle)

	return &Server{
		engine: engine,
		feed:   feed,
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", bind, port),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Broadcast pushes an event to every connected web UI client. A web
// front end is a drop-in alternative to the terminal UI; both read
// from the same chat/command/stats surface.
func (s *Server) Broadcast(kind string, payload any) {
	s.feed.broadcast(Event{Kind: kind, Payload: payload})
}

// ServeHTTP lets Server be driven directly by httptest, bypassing the
// network listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Start runs the status server until it is stopped or fails to bind.
// It is intended to run in its own goroutine.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("statusapi: listen: %w", err)
	}
	return nil
}

// Stop gracefully shuts the status server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
