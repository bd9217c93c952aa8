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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opulentvoice/interlocutor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPorts(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	assert.Equal(t, 57373, cfg.Ports.Voice)
	assert.Equal(t, 57375, cfg.Ports.Control)
	assert.Equal(t, 57374, cfg.Ports.Text)
	assert.Equal(t, 57372, cfg.Ports.Listen)
}

func TestValidateRequiresCallsign(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	err := cfg.Validate()
	require.Error(t, err)

	cfg.Station.Callsign = "W1AW"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadTargetType(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Station.Callsign = "W1AW"
	cfg.Station.TargetType = "toaster"
	require.Error(t, cfg.Validate())
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	t.Parallel()
	base := config.Default()
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), base)
	require.NoError(t, err)
	assert.Equal(t, base, cfg)
}

func TestLoadFileOverridesStation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("station:\n  callsign: W1AW\n  targetIP: 10.0.0.5\n"), 0o600))

	cfg, err := config.LoadFile(path, config.Default())
	require.NoError(t, err)
	assert.Equal(t, "W1AW", cfg.Station.Callsign)
	assert.Equal(t, "10.0.0.5", cfg.Station.TargetIP)
	// Unset fields keep the base default.
	assert.Equal(t, 57373, cfg.Ports.Voice)
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := config.Default()
	cfg.Station.Callsign = "KC1ABC"
	require.NoError(t, config.WriteFile(path, cfg))

	loaded, err := config.LoadFile(path, config.Default())
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
