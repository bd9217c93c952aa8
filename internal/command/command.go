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

// Package command implements the slash-command dispatcher: the first
// filter in the chat input path. Lines starting with '/' are routed
// to a registered handler; everything else passes through to the
// chat manager unchanged.
package command

import "context"

// Result is the structured output of a command execution, rendered
// consistently across every UI surface (terminal, web).
type Result struct {
	Command string
	Summary string
	Details map[string]any
	Err     string
}

// IsError reports whether the command was recognized but failed.
func (r Result) IsError() bool {
	return r.Err != ""
}

// Handler is implemented by every registered command.
type Handler interface {
	// Name is the primary, lowercase command keyword typed after '/'.
	Name() string

	// Aliases lists alternative names that also trigger this command.
	Aliases() []string

	// HelpText is a one-line usage description for /help listings.
	HelpText() string

	// Execute parses args (everything after the command name,
	// leading whitespace stripped) and runs the command. It must
	// never block the input path for more than a few milliseconds;
	// longer-running work belongs on a background task.
	Execute(ctx context.Context, args string) Result
}
