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

// Package config loads the endpoint's configuration from a YAML file
// layered on top of built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Metrics controls the optional observability surface.
type Metrics struct {
	// OTLPEndpoint, when set, enables OpenTelemetry trace export to this
	// collector address. Empty disables tracing entirely.
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	// Bind is the listen address for the /healthz, /metrics, /stats
	// status surface.
	Bind string `yaml:"bind"`
	// Port is the status server's listen port.
	Port int `yaml:"port"`
}

// Station describes the local operator's identity and target peer.
type Station struct {
	// Callsign is this station's identifier, run through the base-40
	// callsign codec before it ever reaches the wire.
	Callsign string `yaml:"callsign"`
	// TargetIP is the remote endpoint's IP address.
	TargetIP string `yaml:"targetIP"`
	// TargetType selects keepalive behavior: "computer" targets receive
	// periodic keepalive frames, "human" targets do not.
	TargetType string `yaml:"targetType"`
}

// Ports holds the per-class UDP ports and the local receive socket's
// port. Listen is the port the UDP socket binds and sends to. Voice,
// Control and Text are recorded here only: the protocol stack fills
// its inner UDP headers from its own fixed PortVoice, PortText and
// PortControl constants and does not read these fields.
type Ports struct {
	Voice   int `yaml:"voice"`
	Control int `yaml:"control"`
	Text    int `yaml:"text"`
	Listen  int `yaml:"listen"`
}

// GPIO holds the pin assignments for a directly-wired hardware
// front panel. A value of 0 means unassigned; only the cmd layer's
// audio backend interprets these, config itself never touches GPIO.
type GPIO struct {
	PTTPin int `yaml:"pttPin"`
	LEDPin int `yaml:"ledPin"`
}

// LogLevel selects the slog/tint verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config is the complete endpoint configuration.
type Config struct {
	Station Station `yaml:"station"`
	Ports   Ports   `yaml:"ports"`
	Metrics Metrics `yaml:"metrics"`
	GPIO    GPIO    `yaml:"gpio"`

	LogLevel LogLevel `yaml:"logLevel"`

	// ChatOnly disables the audio pipeline entirely, for text-only
	// operation when no audio device is available.
	ChatOnly bool `yaml:"chatOnly"`

	// KeepaliveIntervalSeconds is how often an idle keepalive frame is
	// sent to a "computer" target when nothing else went out this cycle.
	KeepaliveIntervalSeconds int `yaml:"keepaliveIntervalSeconds"`
}

const (
	defaultVoicePort   = 57373
	defaultControlPort = 57375
	defaultTextPort    = 57374
	defaultListenPort  = 57372

	defaultStatusPort        = 8080
	defaultKeepaliveInterval = 5
)

// Default returns a Config with every field set to a safe default.
// Callers layer a YAML file on top via LoadFile.
func Default() Config {
	return Config{
		Station: Station{
			TargetType: "human",
		},
		Ports: Ports{
			Voice:   defaultVoicePort,
			Control: defaultControlPort,
			Text:    defaultTextPort,
			Listen:  defaultListenPort,
		},
		Metrics: Metrics{
			Bind: "127.0.0.1",
			Port: defaultStatusPort,
		},
		LogLevel:                 LogLevelInfo,
		KeepaliveIntervalSeconds: defaultKeepaliveInterval,
	}
}

// LoadFile layers the YAML document at path on top of base and returns
// the result. A missing path is not an error: the CLI's -c/--config flag
// is optional, so this simply returns base unchanged.
func LoadFile(path string, base Config) (Config, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("reading config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// WriteFile writes cfg to path as YAML. Backs the --create-config flag.
func WriteFile(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	const perm = 0o644
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the invariants the protocol stack depends on.
func (c Config) Validate() error {
	if c.Station.Callsign == "" {
		return fmt.Errorf("station.callsign is required")
	}
	if c.Station.TargetType != "human" && c.Station.TargetType != "computer" {
		return fmt.Errorf("station.targetType must be \"human\" or \"computer\", got %q", c.Station.TargetType)
	}
	return nil
}
