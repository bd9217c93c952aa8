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
	"strings"

	"github.com/opulentvoice/interlocutor/internal/stats"
)

// HelpCommand lists every registered command. It is registered
// against the same Dispatcher it lists, so it is constructed after
// the other commands and registered last.
type HelpCommand struct {
	dispatcher *Dispatcher
}

// NewHelpCommand creates the /help command over dispatcher.
func NewHelpCommand(dispatcher *Dispatcher) *HelpCommand {
	return &HelpCommand{dispatcher: dispatcher}
}

func (c *HelpCommand) Name() string       { return "help" }
func (c *HelpCommand) Aliases() []string  { return []string{"?"} }
func (c *HelpCommand) HelpText() string   { return "/help — list available commands" }

// Execute lists every registered command's help text, one per line.
func (c *HelpCommand) Execute(_ context.Context, _ string) Result {
	listed := c.dispatcher.ListCommands()
	lines := make([]string, 0, len(listed)+1)
	lines = append(lines, "Available commands:")
	for _, cmd := range listed {
		lines = append(lines, "  "+cmd.HelpText)
	}
	return Result{
		Command: c.Name(),
		Summary: strings.Join(lines, "\n"),
		Details: map[string]any{"commands": listed},
	}
}

// StatsCommand reports the current transmission statistics.
type StatsCommand struct {
	counters *stats.Counters
}

// NewStatsCommand creates the /stats command over counters.
func NewStatsCommand(counters *stats.Counters) *StatsCommand {
	return &StatsCommand{counters: counters}
}

func (c *StatsCommand) Name() string      { return "stats" }
func (c *StatsCommand) Aliases() []string { return nil }
func (c *StatsCommand) HelpText() string  { return "/stats — show transmission statistics" }

// Execute reports a human-readable summary of the transmission
// counters plus the full snapshot for rich UI rendering.
func (c *StatsCommand) Execute(_ context.Context, _ string) Result {
	snap := c.counters.Snapshot()
	summary := fmt.Sprintf(
		"frames sent: %d (voice %d, control %d, text %d, keepalive %d), skipped %d, received %d",
		snap.TotalFramesSent, snap.VoiceFramesSent, snap.ControlFramesSent,
		snap.TextFramesSent, snap.KeepaliveFramesSent, snap.SkippedFrames, snap.FramesReceived,
	)
	return Result{
		Command: c.Name(),
		Summary: summary,
		Details: map[string]any{"stats": snap},
	}
}
