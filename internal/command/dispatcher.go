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

package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dispatcher routes chat lines to registered Handlers. Registration
// is expected to happen at startup, before any dispatching begins;
// Dispatch itself is safe for concurrent use from multiple input
// sources (terminal thread, web handlers).
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher creates an empty command registry.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

// Register adds a handler under its name and every alias. It returns
// an error if any of those keys is already registered.
func (d *Dispatcher) Register(h Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := append([]string{h.Name()}, h.Aliases()...)
	for _, key := range keys {
		key = strings.ToLower(key)
		if existing, ok := d.handlers[key]; ok {
			return fmt.Errorf("command: name collision: %q is already registered to %q", key, existing.Name())
		}
	}
	for _, key := range keys {
		d.handlers[strings.ToLower(key)] = h
	}
	return nil
}

// Dispatch attempts to route line as a command. It returns ok=false
// for lines with no '/' prefix or an unrecognized command name, in
// which case the caller should treat line as ordinary chat text.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (Result, bool) {
	stripped := strings.TrimSpace(line)
	if !strings.HasPrefix(stripped, "/") {
		return Result{}, false
	}

	withoutSlash := stripped[1:]
	fields := strings.SplitN(withoutSlash, " ", 2)
	name := strings.ToLower(strings.TrimSpace(fields[0]))
	if name == "" {
		return Result{}, false
	}
	args := ""
	if len(fields) > 1 {
		args = strings.TrimSpace(fields[1])
	}

	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return Result{}, false
	}

	return handler.Execute(ctx, args), true
}

// ListedCommand pairs a command's primary name with its help text.
type ListedCommand struct {
	Name     string
	HelpText string
}

// ListCommands returns every registered command's name and help
// text, deduplicated across aliases and sorted by name.
func (d *Dispatcher) ListCommands() []ListedCommand {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]bool)
	var out []ListedCommand
	for _, h := range d.handlers {
		if seen[h.Name()] {
			continue
		}
		seen[h.Name()] = true
		out = append(out, ListedCommand{Name: h.Name(), HelpText: h.HelpText()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
