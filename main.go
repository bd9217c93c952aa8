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

package main

import (
	"fmt"
	"os"

	"github.com/opulentvoice/interlocutor/internal/cmd"
	"github.com/opulentvoice/interlocutor/internal/sdk"
)

func main() {
	root := cmd.NewCommand(sdk.Version, sdk.GitCommit)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
