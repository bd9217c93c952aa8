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

// Package transport owns the UDP socket that carries wire frames to
// and from the peer. It hands inbound payload chunks to a reassembler
// and exposes a non-blocking Send for the audio/TX thread.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/opulentvoice/interlocutor/internal/frame"
	"github.com/opulentvoice/interlocutor/internal/protoerr"
	"go.opentelemetry.io/otel"
)

// readBufferSize and writeBufferSize size the kernel socket buffers
// generously; 40ms audio cadence leaves little room for the RX thread
// to fall behind before a burst of text/control traffic fills them.
const (
	readBufferSize  = 1 << 20
	writeBufferSize = 1 << 20
)

// Transport owns one UDP socket used for both sending wire frames to
// the peer and receiving them.
type Transport struct {
	conn   *net.UDPConn
	target *net.UDPAddr
	log    *slog.Logger
}

// Listen binds a UDP socket on listenPort and targets every Send at
// target. The RX thread calls Receive in a loop; the audio/TX thread
// calls Send.
func Listen(listenPort int, target *net.UDPAddr, log *slog.Logger) (*Transport, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: listenPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", protoerr.ErrSocketBindFailed, err)
	}
	if err := conn.SetReadBuffer(readBufferSize); err != nil {
		log.Warn("failed to set udp read buffer", "error", err)
	}
	if err := conn.SetWriteBuffer(writeBufferSize); err != nil {
		log.Warn("failed to set udp write buffer", "error", err)
	}
	return &Transport{conn: conn, target: target, log: log}, nil
}

// Send transmits one wire frame to the configured target. It never
// blocks on a slow peer; UDP delivery is fire-and-forget, and a send
// failure is reported rather than retried.
func (t *Transport) Send(ctx context.Context, w frame.Wire) error {
	_, span := otel.Tracer("interlocutor").Start(ctx, "Transport.Send")
	defer span.End()

	_, err := t.conn.WriteToUDP(w[:], t.target)
	if err != nil {
		return fmt.Errorf("%w: %w", protoerr.ErrSocketSendFailed, err)
	}
	return nil
}

// Receive blocks until one wire frame arrives, validates its length,
// and returns the 121-byte payload chunk for the reassembler.
func (t *Transport) Receive() ([]byte, error) {
	buf := make([]byte, frame.WireSize)
	n, _, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("transport: receive: %w", err)
	}
	if n != frame.WireSize {
		return nil, fmt.Errorf("transport: received %d bytes, expected %d", n, frame.WireSize)
	}
	return buf[frame.HeaderSize:n], nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// LocalAddr returns the socket's bound local address.
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}
